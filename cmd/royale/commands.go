package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerrender "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/render"
	"github.com/Black-And-White-Club/royale-bot/config"
	"github.com/Black-And-White-Club/royale-bot/pkg/jwt"
	"github.com/urfave/cli/v2"
)

var gameFlag = &cli.Int64Flag{Name: "game", Aliases: []string{"g"}, Usage: "game id", Required: true}

func gameID(c *cli.Context) multiplayerdomain.GameID {
	return multiplayerdomain.GameID(c.Int64("game"))
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "publish every reportable of a game not yet reported",
		Flags: []cli.Flag{
			gameFlag,
			&cli.BoolFlag{Name: "dry-run", Usage: "list what would be published without publishing"},
		},
		Action: func(c *cli.Context) error {
			dryRun := c.Bool("dry-run")
			return withEnv(!dryRun, func(ctx context.Context, c *cli.Context, e *env) error {
				outcome, err := e.service.ReportResults(ctx, gameID(c), multiplayerservice.ReportOptions{DryRun: dryRun})
				if err != nil {
					return err
				}

				items := outcome.Published
				verb := "published"
				if dryRun {
					items = outcome.Pending
					verb = "would publish"
				}
				for _, item := range items {
					text, err := multiplayerrender.ReportableText(item)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "[%s/%s %s]\n%s\n\n", item.Type, item.SubType, item.Key(), text)
				}
				fmt.Fprintf(c.App.Writer, "%s %d items; status %s; concluded %t\n", verb, len(items), outcome.Status, outcome.Concluded)
				return nil
			})(c)
		},
	}
}

func leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "print the latest leaderboard of a game, or the one of --round",
		Flags: []cli.Flag{
			gameFlag,
			&cli.IntFlag{Name: "round", Usage: "round number, latest when unset"},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "table or text"},
		},
		Action: withEnv(false, func(ctx context.Context, c *cli.Context, e *env) error {
			view, err := e.service.ComputeResults(ctx, gameID(c))
			if err != nil {
				return err
			}

			all := view.Results.Leaderboards()
			if len(all) == 0 {
				return fmt.Errorf("game %d has no completed round", gameID(c))
			}
			lb := all[len(all)-1]
			if round := c.Int("round"); round > 0 {
				if round > len(all) {
					return fmt.Errorf("game %d has %d completed rounds", gameID(c), len(all))
				}
				lb = all[round-1]
			}

			switch c.String("format") {
			case "text":
				_, err = fmt.Fprintln(c.App.Writer, multiplayerrender.LeaderboardText(lb))
				return err
			case "table":
				return multiplayerrender.WriteLeaderboardTable(c.App.Writer, lb)
			default:
				return fmt.Errorf("unknown format %q", c.String("format"))
			}
		}),
	}
}

func standingCommand() *cli.Command {
	return &cli.Command{
		Name:  "standing",
		Usage: "print the standing of a game",
		Flags: []cli.Flag{gameFlag},
		Action: withEnv(false, func(ctx context.Context, c *cli.Context, e *env) error {
			standing, err := e.service.GetGameStanding(ctx, gameID(c))
			if err != nil {
				return err
			}
			return multiplayerrender.WriteStandingTable(c.App.Writer, *standing)
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the standing and every round of a game to an xlsx workbook",
		Flags: []cli.Flag{
			gameFlag,
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, game-<id>.xlsx when unset"},
		},
		Action: withEnv(false, func(ctx context.Context, c *cli.Context, e *env) error {
			view, err := e.service.ComputeResults(ctx, gameID(c))
			if err != nil {
				return err
			}
			buf, err := multiplayerrender.ExportResults(view.Results)
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				out = fmt.Sprintf("game-%d.xlsx", gameID(c))
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
			return nil
		}),
	}
}

func lobbyCommand() *cli.Command {
	lobbyFlag := &cli.Int64Flag{Name: "lobby", Aliases: []string{"l"}, Usage: "lobby id", Required: true}
	change := func(verb string, op func(multiplayerservice.Service) lobbyChange) cli.ActionFunc {
		return withEnv(false, func(ctx context.Context, c *cli.Context, e *env) error {
			lobbyID := multiplayerdomain.LobbyID(c.Int64("lobby"))
			lobbies, err := op(e.service)(ctx, gameID(c), lobbyID)
			if err != nil {
				return err
			}
			return writeLobbies(c.App.Writer, verb, gameID(c), lobbyID, lobbies)
		})
	}

	return &cli.Command{
		Name:  "lobby",
		Usage: "change the lobbies a game waits on",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "attach a lobby to a game with no recorded match",
				Flags: []cli.Flag{gameFlag, lobbyFlag},
				Action: change("added", func(s multiplayerservice.Service) lobbyChange {
					return s.AddLobby
				}),
			},
			{
				Name:  "remove",
				Usage: "stop waiting on a lobby; its recorded matches keep counting",
				Flags: []cli.Flag{gameFlag, lobbyFlag},
				Action: change("removed", func(s multiplayerservice.Service) lobbyChange {
					return s.RemoveLobby
				}),
			},
		},
	}
}

type lobbyChange func(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)

func writeLobbies(w io.Writer, verb string, game multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID, lobbies []multiplayerdomain.LobbyID) error {
	_, err := fmt.Fprintf(w, "%s lobby %d; game %d waits on lobbies %v\n", verb, lobbyID, game, lobbies)
	return err
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for the results API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true, Usage: "who the token is for"},
			&cli.StringFlag{Name: "role", Value: string(jwt.RoleViewer), Usage: "viewer or operator"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, the configured default when unset"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return mintToken(c.App.Writer, cfg, c.String("subject"), jwt.Role(c.String("role")), c.Duration("ttl"))
		},
	}
}

func mintToken(w io.Writer, cfg *config.Config, subject string, role jwt.Role, ttl time.Duration) error {
	if role != jwt.RoleViewer && role != jwt.RoleOperator {
		return fmt.Errorf("unknown role %q", role)
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is not configured")
	}
	token, err := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL, cfg.JWT.Issuer).GenerateToken(subject, role, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
