package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/alexjbarnes/skport-sync/internal/config"
	apperrors "github.com/alexjbarnes/skport-sync/internal/errors"
	"github.com/alexjbarnes/skport-sync/internal/logging"
	"github.com/alexjbarnes/skport-sync/internal/notify"
	"github.com/alexjbarnes/skport-sync/internal/profile"
	"github.com/alexjbarnes/skport-sync/internal/scheduler"
	"github.com/alexjbarnes/skport-sync/internal/store"
	"github.com/alexjbarnes/skport-sync/skport"
)

var Version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) > 0 {
		switch args[0] {
		case "link":
			return runLink(ctx, cfg, logger, args[1:])
		case "unlink":
			return runUnlink(cfg, args[1:])
		case "attendance":
			return runAttendance(ctx, cfg, logger, args[1:])
		case "card":
			return runCard(ctx, cfg, args[1:])
		case "redeem":
			return runRedeem(ctx, cfg, args[1:])
		case "list":
			return runList(cfg)
		case "set":
			return runSet(cfg, args[1:])
		case "events":
			return runEvents(cfg, args[1:])
		case "wiki":
			return runWiki(ctx, cfg, args[1:])
		default:
			return fmt.Errorf("unknown command %q (expected link, unlink, list, set, events, attendance, card, wiki or redeem)", args[0])
		}
	}

	return runDaemon(ctx, cfg, logger)
}

// newGameClient is a variable so command tests can point it at a fake
// backend.
var newGameClient = func(cfg *config.Config) *skport.Client {
	client := skport.NewClient(&http.Client{Timeout: cfg.RequestTimeout})
	client.SetLanguage(cfg.Language)

	return client
}

// runDaemon starts the sweep scheduler and blocks until shutdown.
func runDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("skport-sync starting",
		slog.String("version", Version),
		slog.String("store", cfg.StorePath),
		slog.String("attendance_at", cfg.Schedule.AttendanceAt),
	)

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	var notifier scheduler.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhook(cfg.NotifyWebhookURL, nil)
		logger.Info("webhook notifications enabled")
	}

	sched, err := scheduler.New(st, newGameClient(cfg), notifier, cfg.Schedule, logger)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	return sched.Run(ctx)
}

// runLink signs in with email and password, walks the credential chain,
// picks the endfield role and stores the linked account.
func runLink(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("link", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	nickname := fs.String("nickname", "", "display name for the account (defaults to the role nickname)")
	noSignin := fs.Bool("no-signin", false, "exclude this account from the daily attendance sweep")
	notifyFlag := fs.Bool("notify", false, "send webhook notifications for this account")
	private := fs.Bool("private", false, "hide this account from shared listings")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("link: -email is required")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	client := newGameClient(cfg)

	login, err := client.TokenByEmailPassword(ctx, *email, password)
	if err != nil {
		var apiError *skport.Error
		if errors.As(err, &apiError) && apiError.Kind == skport.KindApplication {
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidCredentials, apiError.Message)
		}

		return fmt.Errorf("signing in: %w", err)
	}
	logger.Info("signed in", slog.String("email", login.Email))

	// The login token is the long-lived credential; every session-scoped
	// secret is rebuilt from it on demand.
	session, err := client.ObtainSession(ctx, login.Token)
	if err != nil {
		return fmt.Errorf("walking credential chain: %w", err)
	}

	profiles := profile.NewService(client, cfg.Schedule)

	bindings, err := profiles.Bindings(ctx, session)
	if err != nil {
		return fmt.Errorf("listing game roles: %w", err)
	}

	role, err := skport.DefaultEndfieldRole(bindings)
	if err != nil {
		return err
	}

	name := *nickname
	if name == "" {
		name = role.Nickname
	}

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	existing, err := st.ListAccounts()
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	for _, a := range existing {
		if a.RoleID == role.RoleID && a.ServerID == role.ServerID {
			return fmt.Errorf("%w: role %s already linked as account %s", apperrors.ErrAlreadyLinked, role.RoleID, a.ID)
		}
	}

	account := store.Account{
		ID:           uuid.NewString(),
		Nickname:     name,
		UserID:       session.UserID,
		HgID:         login.HgID,
		ServerID:     role.ServerID,
		ServerName:   role.ServerName,
		RoleID:       role.RoleID,
		Token:        login.Token,
		Notify:       *notifyFlag,
		EnableSignin: !*noSignin,
		IsPrivate:    *private,
		CreatedAt:    time.Now().UTC(),
	}

	if err := st.PutAccount(account); err != nil {
		return fmt.Errorf("storing account: %w", err)
	}

	fmt.Printf("linked %s (%s, level %d on %s) as account %s\n",
		name, role.RoleID, role.Level, role.ServerName, account.ID)

	return nil
}

func runUnlink(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: skport-sync unlink <account-id>")
	}

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if _, err := st.GetAccount(args[0]); err != nil {
		return err
	}

	if err := st.DeleteAccount(args[0]); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	fmt.Printf("unlinked account %s\n", args[0])

	return nil
}

// runAttendance claims today's reward for one account immediately,
// outside the scheduled sweep.
func runAttendance(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: skport-sync attendance <account-id>")
	}

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	account, err := st.GetAccount(args[0])
	if err != nil {
		return err
	}

	client := newGameClient(cfg)

	session, err := client.ObtainSession(ctx, account.Token)
	if err != nil {
		return fmt.Errorf("walking credential chain: %w", err)
	}

	role := skport.GameRole{ServerID: account.ServerID, RoleID: account.RoleID}

	rewards, err := client.Attendance(ctx, session, role)
	if err != nil {
		return fmt.Errorf("claiming attendance: %w", err)
	}

	if len(rewards) > 0 {
		payload := scheduler.AttendancePayload{Reward: rewards[0], Bonus: rewards[1:]}
		if _, err := st.RecordEvent(account.ID, store.SourceManual, store.KindAttendance, payload); err != nil {
			logger.Warn("recording event", slog.String("error", err.Error()))
		}
	}

	for _, reward := range rewards {
		name := reward.Name
		if name == "" {
			name = reward.ID
		}
		fmt.Printf("claimed %s x%d\n", name, reward.Count)
	}

	return nil
}

// runCard prints the profile snapshot for one account.
func runCard(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: skport-sync card <account-id>")
	}

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	account, err := st.GetAccount(args[0])
	if err != nil {
		return err
	}

	client := newGameClient(cfg)

	session, err := client.ObtainSession(ctx, account.Token)
	if err != nil {
		return fmt.Errorf("walking credential chain: %w", err)
	}

	role := skport.GameRole{ServerID: account.ServerID, RoleID: account.RoleID}

	profiles := profile.NewService(client, cfg.Schedule)

	detail, err := profiles.CardDetail(ctx, session, role)
	if err != nil {
		return fmt.Errorf("fetching card detail: %w", err)
	}

	fmt.Printf("%s  level %d  world level %d  (%s)\n",
		detail.Base.Name, detail.Base.Level, detail.Base.WorldLevel, detail.Base.ServerName)
	fmt.Printf("operators %d  weapons %d  stamina %s/%s\n",
		detail.Base.CharNum, detail.Base.WeaponNum,
		detail.Dungeon.CurStamina, detail.Dungeon.MaxStamina)

	for _, ch := range detail.Chars {
		fmt.Printf("  %s  level %d  phase %d  potential %d\n",
			ch.CharData.Name, ch.Level, ch.EvolvePhase, ch.PotentialLevel)
	}

	return nil
}

func runList(cfg *config.Config) error {
	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	accounts, err := st.ListAccounts()
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("no linked accounts")
		return nil
	}

	for _, a := range accounts {
		var marks []string
		if a.EnableSignin {
			marks = append(marks, "signin")
		}
		if a.Notify {
			marks = append(marks, "notify")
		}
		if a.IsPrivate {
			marks = append(marks, "private")
		}

		fmt.Printf("%s  %s  %s/%s  [%s]\n",
			a.ID, a.Nickname, a.ServerName, a.RoleID, strings.Join(marks, ","))
	}

	return nil
}

// runSet updates per-account sweep settings. Only flags given on the
// command line are applied; the rest keep their stored values.
func runSet(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	notifyFlag := fs.Bool("notify", false, "send webhook notifications for this account")
	signin := fs.Bool("signin", true, "include this account in the daily attendance sweep")
	private := fs.Bool("private", false, "hide this account from shared listings")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: skport-sync set [-notify=] [-signin=] [-private=] <account-id>")
	}

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	account, err := st.GetAccount(fs.Arg(0))
	if err != nil {
		return err
	}

	changed := false

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "notify":
			account.Notify = *notifyFlag
		case "signin":
			account.EnableSignin = *signin
		case "private":
			account.IsPrivate = *private
		}

		changed = true
	})

	if !changed {
		return fmt.Errorf("set: nothing to change (use -notify, -signin or -private)")
	}

	if err := st.PutAccount(*account); err != nil {
		return fmt.Errorf("storing account: %w", err)
	}

	fmt.Printf("updated account %s: notify=%t signin=%t private=%t\n",
		account.ID, account.Notify, account.EnableSignin, account.IsPrivate)

	return nil
}

// runWiki lists catalog items, optionally filtered by a search query.
// The catalog endpoint is unauthenticated, so no account is needed.
func runWiki(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: skport-sync wiki <operators|weapons> [query]")
	}

	query := strings.Join(args[1:], " ")

	svc := profile.NewService(newGameClient(cfg), cfg.Schedule)

	var (
		items []skport.WikiItem
		err   error
	)

	switch args[0] {
	case "operators":
		items, err = svc.SearchOperators(ctx, query)
	case "weapons":
		items, err = svc.SearchWeapons(ctx, query)
	default:
		return fmt.Errorf("unknown catalog %q (expected operators or weapons)", args[0])
	}

	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for _, item := range items {
		if item.Brief.Description != "" {
			fmt.Printf("%s  %s\n", item.Name, item.Brief.Description)
			continue
		}

		fmt.Println(item.Name)
	}

	return nil
}

func runEvents(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: skport-sync events <account-id>")
	}

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	events, err := st.EventsFor(args[0])
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	for _, e := range events {
		fmt.Printf("%s  %s/%s  %s\n",
			e.CreatedAt.Format(time.RFC3339), e.Source, e.Kind, e.Payload)
	}

	return nil
}

// runRedeem submits a gift code against one account's server. The hub
// token is issued by the game webview and supplied by the user.
func runRedeem(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("redeem", flag.ContinueOnError)
	code := fs.String("code", "", "gift code to redeem")
	channel := fs.String("channel", "6", "distribution channel id")
	token := fs.String("token", "", "game-hub session token")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: skport-sync redeem -code <code> -token <token> <account-id>")
	}

	if *code == "" || *token == "" {
		return fmt.Errorf("redeem: -code and -token are required")
	}

	st, err := store.Open(cfg.StorePath, cfg.StoreSecret)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	account, err := st.GetAccount(fs.Arg(0))
	if err != nil {
		return err
	}

	role := skport.GameRole{ServerID: account.ServerID, RoleID: account.RoleID}

	result, err := newGameClient(cfg).Redeem(ctx, *code, *channel, *token, role)
	if err != nil {
		return fmt.Errorf("redeeming code: %w", err)
	}

	fmt.Printf("redeemed %s (record %s)\n", *code, result.RedeemResult.RecordID)

	return nil
}

// readPassword prompts without echo on a terminal and falls back to a
// plain line read when stdin is piped.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input")
	}

	return strings.TrimSpace(scanner.Text()), nil
}
