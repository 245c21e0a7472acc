package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/adapter/assistantclient"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/escalation"
)

func chatCmd() *cobra.Command {
	var (
		systemPrompt string
		sitePath     string
		useWS        bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the site assistant from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := config.LoadSite(sitePath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var client streamer = assistantclient.NewClient(baseURL, cliLogger())
			if useWS {
				wsClient := assistantclient.NewWSClient(baseURL, cliLogger())
				defer wsClient.Close()
				client = wsClient
			}
			s := &chatSession{
				client:       client,
				classifier:   escalation.New(site.EscalationPhrases...),
				crisis:       site.CrisisMessage,
				systemPrompt: systemPrompt,
				out:          cmd.OutOrStdout(),
			}
			return s.run(ctx, cmd.InOrStdin())
		},
	}
	addClientFlags(cmd)
	cmd.Flags().StringVar(&systemPrompt, "system", "", "system prompt replacing the site persona")
	cmd.Flags().BoolVar(&useWS, "ws", false, "use the WebSocket relay instead of the streaming HTTP route")
	cmd.Flags().StringVar(&sitePath, "site", os.Getenv("SITE_CONFIG"), "site YAML with extra escalation phrases and crisis text")
	return cmd
}

type streamer interface {
	StreamChatCompletion(ctx context.Context, messages []domain.ConversationMessage, onChunk func(string) error, systemPrompt string) error
}

type chatSession struct {
	client       streamer
	classifier   *escalation.Classifier
	crisis       string
	systemPrompt string
	out          io.Writer
	history      []domain.ConversationMessage
}

// run reads one user turn per line until EOF or ctx ends.
func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, "you> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if err := s.turn(ctx, line); err != nil {
				return err
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(s.out, "you> ")
	}
	fmt.Fprintln(s.out)
	return scanner.Err()
}

// turn sends one user message. Messages matching a risk phrase are answered
// locally with the crisis text and never sent to the assistant.
func (s *chatSession) turn(ctx context.Context, text string) error {
	if s.classifier.ShouldEscalate(text) {
		fmt.Fprintf(s.out, "\n%s\n\n", s.crisis)
		return nil
	}

	s.history = append(s.history, domain.ConversationMessage{Role: domain.RoleUser, Content: text})

	var reply strings.Builder
	fmt.Fprint(s.out, "assistant> ")
	err := s.client.StreamChatCompletion(ctx, s.history, func(chunk string) error {
		reply.WriteString(chunk)
		_, err := io.WriteString(s.out, chunk)
		return err
	}, s.systemPrompt)
	fmt.Fprintln(s.out)

	if err != nil {
		// Drop the unanswered turn so the user can retry it.
		s.history = s.history[:len(s.history)-1]
		if errors.Is(err, context.Canceled) {
			return nil
		}
		fmt.Fprintf(s.out, "error: %v\n", err)
		return nil
	}

	s.history = append(s.history, domain.ConversationMessage{Role: domain.RoleAssistant, Content: reply.String()})
	return nil
}
