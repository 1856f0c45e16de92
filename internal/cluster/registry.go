package cluster

import (
	"log/slog"
	"sort"
	"strings"
)

type Factory func(logger *slog.Logger) Aggregator

var reg = map[string]Factory{}

func init() {
	Register(StrategyGreedy, func(l *slog.Logger) Aggregator { return NewGreedy(l) })
	Register(StrategyTransitive, func(l *slog.Logger) Aggregator { return NewTransitive(l) })
}

func Register(name string, f Factory) {
	reg[strings.ToLower(strings.TrimSpace(name))] = f
}

// New builds the named strategy, falling back to greedy for unknown names.
func New(name string, logger *slog.Logger) Aggregator {
	logger = orDiscard(logger)
	if f, ok := reg[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f(logger)
	}
	logger.Warn("unknown cluster strategy; falling back to greedy", "strategy", name)
	return NewGreedy(logger)
}

func Strategies() []string {
	out := make([]string, 0, len(reg))
	for k := range reg {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
