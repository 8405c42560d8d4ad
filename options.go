package svh

import (
	"io"

	"github.com/Sven-vh/svh-scope/pkg/activity"
)

// Option configures a scope tree at construction time. The configuration is
// shared by every node of the tree and fixed once NewRoot returns.
type Option func(*treeConfig)

type treeConfig struct {
	autoInsert   bool
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
	hooks        activity.Hooks
	emitter      *activity.Emitter
	debugWriter  io.Writer
}

func applyOptions(opts []Option) *treeConfig {
	cfg := &treeConfig{autoInsert: true}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	cfg.emitter = activity.NewEmitter(cfg.hooks, activity.Config{
		Enabled: len(cfg.hooks) > 0,
		Channel: "scope",
	})
	return cfg
}

// WithAutoInsert controls whether a Get issued at the root silently creates
// a default payload when no scope on the chain defines the requested type.
// Enabled by default.
func WithAutoInsert(enabled bool) Option {
	return func(cfg *treeConfig) {
		cfg.autoInsert = enabled
	}
}

// WithEvaluator configures the expression evaluator used by Scope.Evaluate.
// Without one, an expr-lang evaluator is constructed on first use.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *treeConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a cache for compiled expression programs.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *treeConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry configures the tree to expose registry's functions to
// evaluators. The registry is cloned to preserve immutability.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *treeConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for evaluator use.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *treeConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithEvaluatorLogger attaches a logger that records every evaluation
// attempt made through the tree.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *treeConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivityHooks attaches hooks notified on scope lifecycle events:
// creation, inheritance copy, reset, and auto-insert. Nil entries are
// dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *treeConfig) {
		cfg.hooks = normalized
	}
}

// WithDebugWriter redirects DebugLog output, which otherwise goes to
// standard error.
func WithDebugWriter(w io.Writer) Option {
	return func(cfg *treeConfig) {
		cfg.debugWriter = w
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
