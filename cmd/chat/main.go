// Command chat is a terminal chat loop backed by the configured history
// store. Replies come from a local echo provider, so it runs without any
// API credentials; it exists to exercise the full pipeline from config to
// stream accumulation to persisted transcript.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zc277584121/langchain/config"
	"github.com/zc277584121/langchain/history"
	"github.com/zc277584121/langchain/llm"
	"github.com/zc277584121/langchain/llm/tokenizer"
	"github.com/zc277584121/langchain/messages"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	sessionID := flag.String("session", "", "session id, random when empty")
	flag.Parse()

	cfg, err := config.NewLoader().WithConfigPath(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := config.BuildLogger(cfg.Log)
	defer logger.Sync()
	logger.Info("starting chat",
		zap.String("version", Version),
		zap.String("git_commit", GitCommit),
		zap.String("history_backend", cfg.History.Backend))

	session := *sessionID
	if session == "" {
		session = uuid.NewString()
	}

	ctx := context.Background()
	store, err := history.New(ctx, cfg.History, session, logger)
	if err != nil {
		logger.Fatal("open history store", zap.Error(err))
	}

	provider := &echoProvider{}
	registry := llm.NewProviderRegistry()
	if err := registry.Register(provider); err != nil {
		logger.Fatal("register provider", zap.Error(err))
	}

	counter := tokenizer.GetOrEstimator(cfg.Tokenizer.DefaultModel)

	fmt.Printf("session %s — type a message, ctrl-d to quit\n", session)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := store.AddUserMessage(ctx, line); err != nil {
			logger.Fatal("record message", zap.Error(err))
		}

		resp, err := llm.StreamAndCollect(ctx, provider, &llm.ChatRequest{
			Model:    cfg.Tokenizer.DefaultModel,
			Messages: []messages.Message{messages.NewHumanMessage(line)},
		}, llm.WithLogger(logger))
		if err != nil {
			logger.Fatal("stream reply", zap.Error(err))
		}
		if err := store.AddMessage(ctx, resp.Message); err != nil {
			logger.Fatal("record reply", zap.Error(err))
		}
		fmt.Printf("%s: %s\n", cfg.Buffer.AIPrefix, resp.Message.Content.Text())
	}

	transcript, err := store.Messages(ctx)
	if err != nil {
		logger.Fatal("read transcript", zap.Error(err))
	}
	rendered, err := messages.GetBufferString(transcript, cfg.Buffer.HumanPrefix, cfg.Buffer.AIPrefix)
	if err != nil {
		logger.Fatal("render transcript", zap.Error(err))
	}
	tokens, err := counter.CountMessages(transcript)
	if err != nil {
		logger.Warn("count tokens", zap.Error(err))
	}

	fmt.Println("\n--- transcript ---")
	fmt.Println(rendered)
	fmt.Printf("~%d tokens across %d messages\n", tokens, len(transcript))
}

// echoProvider streams the user's text back word by word.
type echoProvider struct{}

func (p *echoProvider) Name() string { return "echo" }

func (p *echoProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return llm.StreamAndCollect(ctx, p, req)
}

func (p *echoProvider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	var text string
	if n := len(req.Messages); n > 0 {
		text = req.Messages[n-1].Content.Text()
	}
	reply := "You said: " + text

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		for i, word := range strings.SplitAfter(reply, " ") {
			chunk := llm.StreamChunk{Delta: messages.NewAIMessageChunk(word)}
			if i == 0 {
				chunk.ID = uuid.NewString()
				chunk.Model = req.Model
			}
			select {
			case ch <- chunk:
			case <-ctx.Done():
				return
			}
		}
		ch <- llm.StreamChunk{Delta: messages.NewAIMessageChunk(""), FinishReason: "stop"}
	}()
	return ch, nil
}
