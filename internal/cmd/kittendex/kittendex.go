// Package kittendex parses command flags and executes ledger operations
// against the local store. Each mutating subcommand runs as exactly one
// storage transaction.
package kittendex

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/louisbranch/kittendex/internal/balances"
	"github.com/louisbranch/kittendex/internal/identity"
	"github.com/louisbranch/kittendex/internal/ledger"
	entrypoint "github.com/louisbranch/kittendex/internal/platform/cmd"
	kerrors "github.com/louisbranch/kittendex/internal/platform/errors"
	"github.com/louisbranch/kittendex/internal/random"
	"github.com/louisbranch/kittendex/internal/storage"
	"github.com/louisbranch/kittendex/internal/storage/bbolt"
	"github.com/louisbranch/kittendex/internal/telemetry"
)

// Config holds kittendex command configuration.
type Config struct {
	StoragePath string `env:"KITTENDEX_DB" envDefault:"kittendex.db"`
	Actor       string `env:"KITTENDEX_ACTOR"`

	// Args holds the subcommand and its positional arguments.
	Args []string
}

const usage = `usage: kittendex [flags] <command> [args]

commands:
  create                     mint a new kitty for the acting account
  breed <id1> <id2>          breed two kitties owned by anyone
  transfer <to> <id>         give a kitty away
  set-price <id> <price>     list a kitty for sale (price 0 delists)
  buy <id> <max-price>       buy a listed kitty
  show <id>                  print a kitty record
  list [account]             print the kitties an account owns
  balance [account]          print an account balance
  mint <amount>              credit the acting account (dev faucet)`

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.StoragePath, "db", cfg.StoragePath, "Path to the ledger database")
	fs.StringVar(&cfg.Actor, "as", cfg.Actor, "Acting account")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// Run executes the configured subcommand, writing results to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceKittendex, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	if len(cfg.Args) == 0 {
		return errors.New(usage)
	}

	store, err := bbolt.Open(cfg.StoragePath)
	if err != nil {
		return err
	}
	defer store.Close()

	book := balances.NewBook()
	app := &app{
		store:   store,
		ledger:  ledger.New(random.NewSource(), book),
		book:    book,
		emitter: telemetry.NewEmitter(telemetry.NewLog(store)),
		out:     out,
	}

	command, args := cfg.Args[0], cfg.Args[1:]
	ctx, span := otel.Tracer("kittendex").Start(ctx, "kittendex."+command)
	defer span.End()

	switch command {
	case "create":
		return app.create(ctx, cfg.Actor, args)
	case "breed":
		return app.breed(ctx, cfg.Actor, args)
	case "transfer":
		return app.transfer(ctx, cfg.Actor, args)
	case "set-price":
		return app.setPrice(ctx, cfg.Actor, args)
	case "buy":
		return app.buy(ctx, cfg.Actor, args)
	case "show":
		return app.show(ctx, args)
	case "list":
		return app.list(ctx, cfg.Actor, args)
	case "balance":
		return app.balance(ctx, cfg.Actor, args)
	case "mint":
		return app.mint(ctx, cfg.Actor, args)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

type app struct {
	store   storage.Store
	ledger  *ledger.Ledger
	book    *balances.Book
	emitter *telemetry.Emitter
	out     io.Writer
}

// mutate wraps one public ledger operation in a single transaction,
// advancing the block height first so randomness draws see fresh context.
func (a *app) mutate(ctx context.Context, fn func(storage.Tx) error) error {
	return a.store.Update(ctx, func(tx storage.Tx) error {
		if err := random.AdvanceBlock(tx); err != nil {
			return err
		}
		return fn(tx)
	})
}

func (a *app) emit(ctx context.Context, op, actor, detail string, opErr error) {
	evt := telemetry.Event{Op: op, Actor: actor, Detail: detail}
	if opErr != nil {
		evt.Severity = telemetry.SeverityError
		evt.Detail = opErr.Error()
	}
	if err := a.emitter.Emit(ctx, evt); err != nil {
		log.Printf("telemetry emit %s: %v", op, err)
	}
}

func (a *app) create(ctx context.Context, actor string, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: kittendex create")
	}
	account, err := identity.Resolve(actor)
	if err != nil {
		return err
	}

	var id ledger.KittyID
	err = a.mutate(ctx, func(tx storage.Tx) error {
		var opErr error
		id, opErr = a.ledger.Create(tx, ledger.AccountID(account))
		return opErr
	})
	a.emit(ctx, "create", account, fmt.Sprintf("kitty %d", id), err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "created kitty %d for %s\n", id, account)
	return nil
}

func (a *app) breed(ctx context.Context, actor string, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: kittendex breed <id1> <id2>")
	}
	account, err := identity.Resolve(actor)
	if err != nil {
		return err
	}
	id1, err := parseKittyID(args[0])
	if err != nil {
		return err
	}
	id2, err := parseKittyID(args[1])
	if err != nil {
		return err
	}

	var id ledger.KittyID
	err = a.mutate(ctx, func(tx storage.Tx) error {
		var opErr error
		id, opErr = a.ledger.Breed(tx, ledger.AccountID(account), id1, id2)
		return opErr
	})
	a.emit(ctx, "breed", account, fmt.Sprintf("kitty %d from %d and %d", id, id1, id2), err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "bred kitty %d from %d and %d for %s\n", id, id1, id2, account)
	return nil
}

func (a *app) transfer(ctx context.Context, actor string, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: kittendex transfer <to> <id>")
	}
	account, err := identity.Resolve(actor)
	if err != nil {
		return err
	}
	to, err := identity.Resolve(args[0])
	if err != nil {
		return err
	}
	id, err := parseKittyID(args[1])
	if err != nil {
		return err
	}

	err = a.mutate(ctx, func(tx storage.Tx) error {
		return a.ledger.Transfer(tx, ledger.AccountID(account), ledger.AccountID(to), id)
	})
	a.emit(ctx, "transfer", account, fmt.Sprintf("kitty %d to %s", id, to), err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "transferred kitty %d from %s to %s\n", id, account, to)
	return nil
}

func (a *app) setPrice(ctx context.Context, actor string, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: kittendex set-price <id> <price>")
	}
	account, err := identity.Resolve(actor)
	if err != nil {
		return err
	}
	id, err := parseKittyID(args[0])
	if err != nil {
		return err
	}
	price, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	err = a.mutate(ctx, func(tx storage.Tx) error {
		return a.ledger.SetPrice(tx, ledger.AccountID(account), id, ledger.Balance(price))
	})
	a.emit(ctx, "set-price", account, fmt.Sprintf("kitty %d price %d", id, price), err)
	if err != nil {
		return err
	}

	if price == 0 {
		fmt.Fprintf(a.out, "delisted kitty %d\n", id)
	} else {
		fmt.Fprintf(a.out, "listed kitty %d at %d\n", id, price)
	}
	return nil
}

func (a *app) buy(ctx context.Context, actor string, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: kittendex buy <id> <max-price>")
	}
	account, err := identity.Resolve(actor)
	if err != nil {
		return err
	}
	id, err := parseKittyID(args[0])
	if err != nil {
		return err
	}
	maxPrice, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	err = a.mutate(ctx, func(tx storage.Tx) error {
		return a.ledger.Buy(tx, ledger.AccountID(account), id, ledger.Balance(maxPrice))
	})
	a.emit(ctx, "buy", account, fmt.Sprintf("kitty %d", id), err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "bought kitty %d for %s\n", id, account)
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kittendex show <id>")
	}
	id, err := parseKittyID(args[0])
	if err != nil {
		return err
	}

	var kitty ledger.Kitty
	var owner ledger.AccountID
	err = a.store.View(ctx, func(tx storage.Tx) error {
		var viewErr error
		kitty, viewErr = a.ledger.Kitty(tx, id)
		if viewErr != nil {
			return viewErr
		}
		owner, viewErr = a.ledger.OwnerOf(tx, id)
		return viewErr
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "kitty %d\n  owner: %s\n  dna: %s\n", id, owner, kitty.DNA)
	if kitty.Price == 0 {
		fmt.Fprintf(a.out, "  price: not for sale\n")
	} else {
		fmt.Fprintf(a.out, "  price: %d\n", kitty.Price)
	}
	return nil
}

func (a *app) list(ctx context.Context, actor string, args []string) error {
	account, err := accountArg(actor, args, "usage: kittendex list [account]")
	if err != nil {
		return err
	}

	var ids []ledger.KittyID
	err = a.store.View(ctx, func(tx storage.Tx) error {
		var viewErr error
		ids, viewErr = a.ledger.Owned(tx, ledger.AccountID(account))
		return viewErr
	})
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		fmt.Fprintf(a.out, "%s owns no kitties\n", account)
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	fmt.Fprintf(a.out, "%s owns %d: %s\n", account, len(ids), strings.Join(parts, ", "))
	return nil
}

func (a *app) balance(ctx context.Context, actor string, args []string) error {
	account, err := accountArg(actor, args, "usage: kittendex balance [account]")
	if err != nil {
		return err
	}

	var amount uint64
	err = a.store.View(ctx, func(tx storage.Tx) error {
		var viewErr error
		amount, viewErr = a.book.BalanceOf(tx, account)
		return viewErr
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s holds %d\n", account, amount)
	return nil
}

func (a *app) mint(ctx context.Context, actor string, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kittendex mint <amount>")
	}
	account, err := identity.Resolve(actor)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}

	err = a.mutate(ctx, func(tx storage.Tx) error {
		return a.book.Mint(tx, account, amount)
	})
	a.emit(ctx, "mint", account, fmt.Sprintf("amount %d", amount), err)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "minted %d for %s\n", amount, account)
	return nil
}

// accountArg resolves the optional positional account, defaulting to the
// acting account.
func accountArg(actor string, args []string, usageMsg string) (string, error) {
	switch len(args) {
	case 0:
		return identity.Resolve(actor)
	case 1:
		return identity.Resolve(args[0])
	default:
		return "", errors.New(usageMsg)
	}
}

func parseKittyID(s string) (ledger.KittyID, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, kerrors.WithMetadata(kerrors.CodeInvalidKittyID,
			"kitty id must be an unsigned 32-bit integer",
			map[string]string{"arg": s})
	}
	return ledger.KittyID(id), nil
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount must be an unsigned integer, got %q", s)
	}
	return amount, nil
}
