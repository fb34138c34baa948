package main

// Wipe every stored file and resume record of one user:
//   go run ./cmd/wipe --user dev:ada --list
//   go run ./cmd/wipe --user dev:ada --yes

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	flags "github.com/jessevdk/go-flags"

	"resume-tracker/internal/bootstrap"
	"resume-tracker/internal/dashboard"
	"resume-tracker/internal/kv"
	"resume-tracker/internal/platform"
	"resume-tracker/internal/shared/config"
	"resume-tracker/internal/shared/storage/db"
	"resume-tracker/internal/shared/storage/object"
	"resume-tracker/internal/users"
)

type options struct {
	User string `long:"user" short:"u" description:"user id or username whose data is wiped" required:"true"`
	Yes  bool   `long:"yes" short:"y" description:"skip the confirmation prompt"`
	List bool   `long:"list" short:"l" description:"list the user's files and exit"`
}

type backends struct {
	Store object.ObjectStore
	// KV is nil when no database is configured; records are then left alone.
	KV kv.Repo
	// Users resolves usernames; nil means --user is taken as an ID.
	Users *users.Service
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store, err := bootstrap.BuildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("object store: %v", err)
	}
	var repo kv.Repo
	var userSvc *users.Service
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		repo = &kv.PGRepo{DB: sqlDB}
		userSvc = users.NewService(&users.PGRepo{DB: sqlDB})
	} else {
		log.Printf("DATABASE_URL empty; only files are wiped")
	}

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, backends{Store: store, KV: repo, Users: userSvc})
	if sqlDB != nil {
		sqlDB.Close()
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, b backends) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintln(stdout, err)
		return 2
	}

	userID, username := opts.User, opts.User
	if b.Users != nil {
		user, err := b.Users.Resolve(ctx, opts.User)
		switch {
		case err == nil:
			userID, username = user.ID, user.Username
		case errors.Is(err, users.ErrNotFound):
			fmt.Fprintf(stdout, "no stored profile for %s; using it as the user id\n", opts.User)
		default:
			fmt.Fprintf(stdout, "resolve user: %v\n", err)
			return 1
		}
	}

	provider := &platform.Provider{Store: b.Store, KV: b.KV}
	f := provider.For(platform.Authenticated(userID, username))

	files, err := f.FS.ReadDir(ctx, "./")
	if err != nil {
		fmt.Fprintf(stdout, "list files: %v\n", err)
		return 1
	}
	var total uint64
	for _, file := range files {
		total += uint64(file.SizeBytes)
		fmt.Fprintf(stdout, "%-60s %10s\n", file.Path, humanize.IBytes(uint64(file.SizeBytes)))
	}
	fmt.Fprintf(stdout, "%d files, %s\n", len(files), humanize.IBytes(total))
	if opts.List {
		return 0
	}
	if len(files) == 0 {
		fmt.Fprintln(stdout, "nothing to delete")
		return 0
	}

	if !opts.Yes {
		fmt.Fprintf(stdout, "Delete all data of %s (%s)? Type yes to continue: ", username, userID)
		answer, _ := bufio.NewReader(stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Fprintln(stdout, "aborted")
			return 1
		}
	}

	var records dashboard.Flusher
	if b.KV != nil {
		records = f.KV
	}
	report := dashboard.Wipe(ctx, f.FS, records, files)
	fmt.Fprintf(stdout, "deleted %d of %d files\n", len(report.Deleted), len(files))
	if report.Err != nil {
		fmt.Fprintf(stdout, "%s %v\n", dashboard.MessageFailed, report.Err)
		return 1
	}
	if !report.Flushed {
		fmt.Fprintln(stdout, "Files wiped; resume records were not touched (no database configured)")
		return 0
	}
	fmt.Fprintln(stdout, dashboard.MessageWiped)
	return 0
}
