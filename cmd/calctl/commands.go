package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"calendar-autobot/internal/app"
	"calendar-autobot/internal/event"
	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/event/repository/postgre"
	"calendar-autobot/internal/model"
	"calendar-autobot/pkg/gcalendar"
	"calendar-autobot/pkg/log"
)

var userFlag = &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "user id", Required: true}

func (e *env) extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "extract events from text without storing or syncing them",
		ArgsUsage: "[text | -]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "timezone", Aliases: []string{"tz"}, Usage: "IANA timezone of the text"},
			&cli.StringFlag{Name: "date", Usage: "reference date (YYYY-MM-DD), defaults to today"},
		},
		Action: func(c *cli.Context) error {
			text, err := readText(c)
			if err != nil {
				return err
			}

			tz := c.String("timezone")
			if tz == "" {
				tz = e.cfg.Extraction.DefaultTimezone
			}
			var ref time.Time
			if d := c.String("date"); d != "" {
				loc, err := time.LoadLocation(tz)
				if err != nil {
					return fmt.Errorf("timezone %q: %w", tz, err)
				}
				if ref, err = time.ParseInLocation(time.DateOnly, d, loc); err != nil {
					return fmt.Errorf("date %q: %w", d, err)
				}
			}

			ctx := log.NewTraceContext(c.Context)
			out, err := app.NewPreviewer(ctx, e.l, e.cfg).Preview(ctx, event.PreviewInput{
				Text:          text,
				Timezone:      tz,
				ReferenceDate: ref,
			})
			if err != nil {
				return errors.New(event.UserMessage(err))
			}
			return printJSON(c.App.Writer, out)
		},
	}
}

func (e *env) syncPendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync-pending",
		Usage: "add every unsynced event of a user to their Google Calendar",
		Flags: []cli.Flag{userFlag},
		Action: func(c *cli.Context) error {
			a, err := e.open(c, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.UseCase.SyncPending(c.Context, c.String("user"))
			if err != nil {
				fmt.Fprintf(c.App.ErrWriter, "synced %d of %d before stopping\n", out.Synced, out.Pending)
				return errors.New(event.UserMessage(err))
			}
			return printJSON(c.App.Writer, out)
		},
	}
}

func (e *env) removeDuplicatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "remove-duplicates",
		Usage: "delete repeated events from a user's Google Calendar",
		Flags: []cli.Flag{userFlag},
		Action: func(c *cli.Context) error {
			a, err := e.open(c, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.UseCase.RemoveDuplicates(c.Context, c.String("user"))
			if err != nil {
				return errors.New(event.UserMessage(err))
			}
			fmt.Fprintf(c.App.Writer, "removed %d duplicate event(s)\n", out.Removed)
			return nil
		},
	}
}

func (e *env) migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the database schema",
		Action: func(c *cli.Context) error {
			db, err := postgre.Connect(c.Context, postgre.ConnectOptions{
				Driver: e.cfg.Database.Driver,
				DSN:    e.cfg.Database.DSN,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgre.Migrate(c.Context, db); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "schema up to date")
			return nil
		},
	}
}

func (e *env) createUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "register a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "username"},
			&cli.StringFlag{Name: "timezone", Aliases: []string{"tz"}, Value: model.DefaultTimezone},
			&cli.BoolFlag{Name: "temporary", Usage: "pre-signup user; events are never auto-synced"},
		},
		Action: func(c *cli.Context) error {
			if _, err := time.LoadLocation(c.String("timezone")); err != nil {
				return fmt.Errorf("timezone %q: %w", c.String("timezone"), err)
			}

			a, err := e.open(c, app.Options{SkipRedis: true})
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Repo.CreateUser(c.Context, repository.CreateUserOptions{
				Email:       c.String("email"),
				Username:    c.String("username"),
				Timezone:    c.String("timezone"),
				IsTemporary: c.Bool("temporary"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, user.ID)
			return nil
		},
	}
}

// authorizeCommand runs the OAuth consent flow in the terminal and stores the
// resulting grant for the user.
func (e *env) authorizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "authorize",
		Usage: "grant calendar access for a user through the OAuth consent screen",
		Flags: []cli.Flag{
			userFlag,
			&cli.StringFlag{Name: "credentials", Usage: "OAuth desktop client JSON; defaults to the configured client id/secret"},
		},
		Action: func(c *cli.Context) error {
			oauthCfg, err := e.oauthConfig(c.String("credentials"))
			if err != nil {
				return err
			}

			a, err := e.open(c, app.Options{SkipRedis: true})
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Repo.GetUser(c.Context, c.String("user"))
			if err != nil {
				return err
			}
			if user.ID == "" {
				return event.ErrUserNotFound
			}

			authURL := oauthCfg.AuthCodeURL("calctl-"+user.ID, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
			fmt.Fprintf(c.App.Writer, "1. Open this URL and sign in with the Google account of %s:\n\n%s\n\n", user.Email, authURL)
			fmt.Fprint(c.App.Writer, "2. Paste the authorization code and press Enter: ")

			code, err := bufio.NewReader(c.App.Reader).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read authorization code: %w", err)
			}

			tok, err := oauthCfg.Exchange(c.Context, strings.TrimSpace(code))
			if err != nil {
				return fmt.Errorf("exchange authorization code: %w", err)
			}

			cred := model.SyncCredential{
				AccessToken:  tok.AccessToken,
				RefreshToken: tok.RefreshToken,
			}
			if scope, ok := tok.Extra("scope").(string); ok {
				cred.Scope = scope
			}
			if !tok.Expiry.IsZero() {
				expiry := tok.Expiry
				cred.Expiry = &expiry
			}
			if err := a.Repo.SaveCredential(c.Context, user.ID, cred); err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "\nCalendar access saved for user %s\n", user.ID)
			return nil
		},
	}
}

func (e *env) oauthConfig(credentialsPath string) (*oauth2.Config, error) {
	scope := e.cfg.Google.RequiredScope
	if scope == "" {
		scope = gcalendar.Scope
	}

	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("read credentials file %q: %w", credentialsPath, err)
		}
		cfg, err := google.ConfigFromJSON(data, scope)
		if err != nil {
			return nil, fmt.Errorf("parse credentials (expected an OAuth desktop client file): %w", err)
		}
		return cfg, nil
	}

	if e.cfg.Google.ClientID == "" || e.cfg.Google.ClientSecret == "" {
		return nil, errors.New("google client id and secret are not configured; pass --credentials")
	}
	return &oauth2.Config{
		ClientID:     e.cfg.Google.ClientID,
		ClientSecret: e.cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{scope},
	}, nil
}

func readText(c *cli.Context) (string, error) {
	arg := strings.Join(c.Args().Slice(), " ")
	if arg != "" && arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
