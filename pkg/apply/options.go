package apply

import "peertech.de/keel/pkg/report"

type Option = func(*Options)

type Options struct {
	Reporter report.Reporter
	Executor Executor
}

func WithReporter(r report.Reporter) Option {
	return func(o *Options) {
		o.Reporter = r
	}
}

func WithExecutor(e Executor) Option {
	return func(o *Options) {
		o.Executor = e
	}
}
