package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"leolani/internal/brain"
	"leolani/internal/doctor"
	"leolani/internal/history"
	"leolani/internal/pipeline"
)

var (
	speakerFlag string
	limitFlag   int
)

func init() {
	chatCmd.Flags().StringVar(&speakerFlag, "speaker", "human", "name of the person speaking")
	askCmd.Flags().StringVar(&speakerFlag, "speaker", "human", "name of the person speaking")
	tellCmd.Flags().StringVar(&speakerFlag, "speaker", "human", "name of the person speaking")
	recentCmd.Flags().IntVar(&limitFlag, "limit", 10, "number of turns to show")
}

// runTurn pushes one utterance through the pipeline and records the turn.
func runTurn(ctx context.Context, a *app, chat, speaker, utterance string) (pipeline.Response, error) {
	names, err := a.roster.Snapshot()
	if err != nil {
		return pipeline.Response{}, err
	}
	turn, err := a.history.NextTurn(chat)
	if err != nil {
		return pipeline.Response{}, err
	}
	resp := a.pipeline.Process(ctx, pipeline.Request{
		Utterance: utterance,
		Speaker:   speaker,
		Chat:      chat,
		Turn:      turn,
		Roster:    names,
	})
	err = a.history.Record(history.Turn{
		Chat:      chat,
		Turn:      turn,
		Speaker:   speaker,
		Utterance: utterance,
		Reply:     resp.Reply,
		Capsule:   resp.Capsule,
	})
	return resp, err
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		chat := uuid.NewString()
		speaker := strings.ToLower(speakerFlag)
		fmt.Printf("%s: Hello %s! Tell me things or ask me questions. Type /quit to stop.\n",
			a.cfg.RobotName, speaker)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Printf("%s> ", speaker)
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				break
			}
			resp, err := runTurn(cmd.Context(), a, chat, speaker, line)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", a.cfg.RobotName, resp.Reply)
		}
		fmt.Printf("%s: Goodbye %s!\n", a.cfg.RobotName, speaker)
		return scanner.Err()
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [utterance]",
	Short: "Ask a single question",
	Args:  cobra.ExactArgs(1),
	RunE:  runSingle,
}

var tellCmd = &cobra.Command{
	Use:   "tell [utterance]",
	Short: "Tell the robot a single statement",
	Args:  cobra.ExactArgs(1),
	RunE:  runSingle,
}

func runSingle(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	resp, err := runTurn(cmd.Context(), a, uuid.NewString(), strings.ToLower(speakerFlag), args[0])
	if err != nil {
		return err
	}
	fmt.Println(resp.Reply)
	return nil
}

var meetCmd = &cobra.Command{
	Use:   "meet [name]",
	Short: "Add a person to the known-entities roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.roster.Meet(args[0]); err != nil {
			return err
		}
		fmt.Printf("Nice to meet you, %s!\n", args[0])
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recent conversation turns",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		turns, err := a.history.Recent(limitFlag)
		if err != nil {
			return err
		}
		if len(turns) == 0 {
			fmt.Println("No conversation history yet.")
			return nil
		}
		for _, t := range turns {
			fmt.Printf("[%s #%d] %s: %s\n", t.Chat[:8], t.Turn, t.Speaker, t.Utterance)
			fmt.Printf("           %s: %s\n", a.cfg.RobotName, t.Reply)
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the triple store is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(cmd.Context(),
			time.Duration(a.cfg.StoreTimeoutSeconds)*time.Second)
		defer cancel()

		client := brain.NewClient(a.cfg.StoreURL,
			time.Duration(a.cfg.StoreTimeoutSeconds)*time.Second, a.logger)
		if _, err := client.Select(ctx, "SELECT ?s WHERE { ?s ?p ?o } LIMIT 1"); err != nil {
			fmt.Printf("store unreachable: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("store ok: %s\n", a.cfg.StoreURL)
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run all self-diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(cmd.Context(),
			time.Duration(a.cfg.StoreTimeoutSeconds)*time.Second)
		defer cancel()

		client := brain.NewClient(a.cfg.StoreURL,
			time.Duration(a.cfg.StoreTimeoutSeconds)*time.Second, a.logger)
		d := doctor.NewRunner(a.cfg, a.db, client).RunAll(ctx)
		for _, c := range d.Checks {
			fmt.Printf("%-12s [%s] %s\n", c.Name, c.Status, c.Message)
		}
		if !d.Healthy {
			os.Exit(1)
		}
		return nil
	},
}
