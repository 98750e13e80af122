// Command useradd registers a user in the metadata database. It reads the
// server configuration (flags, environment, JSON file) to find the database,
// applies pending migrations and prompts for whatever was not given with
// -login and -email. The password is always prompted for.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/cloudstore/internal/flagx"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/config"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cloudstore/internal/server/services"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

type options struct {
	login string
	email string
}

func parseOptions(args []string) (options, error) {
	var o options

	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.StringVar(&o.login, "login", "", "login of the new user")
	fs.StringVar(&o.email, "email", "", "email of the new user")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-login", "-email"})); err != nil {
		return o, err
	}
	return o, nil
}

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(ctx, cfg, opts, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, in *os.File, out io.Writer) error {
	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	db, rm, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := rm.RunMigrations(ctx, db); err != nil {
		return err
	}

	reader := bufio.NewReader(in)

	if opts.login == "" {
		if opts.login, err = prompt(reader, out, "Login"); err != nil {
			return err
		}
	}
	if opts.email == "" {
		if opts.email, err = prompt(reader, out, "Email"); err != nil {
			return err
		}
	}

	password, err := readSecret(reader, in, out)
	if err != nil {
		return err
	}

	identity := services.NewIdentityService(db, rm, cfg)
	us := services.NewUserService(db, rm, identity, cfg, logger)

	u, err := us.Register(ctx, opts.login, opts.email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "registered %s <%s> id=%s\n", u.Login, u.Email, u.ID)
	return nil
}

func prompt(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", label); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads the password without echo when in is a terminal and as a
// plain line otherwise.
func readSecret(reader *bufio.Reader, in *os.File, w io.Writer) (string, error) {
	fd := int(in.Fd())
	if !isTerminal(fd) {
		return prompt(reader, w, "Password")
	}

	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
