package materialize

// withAfterCheck runs fn after the marker lookup, before the day's tasks are written
func withAfterCheck(fn func()) Option {
	return func(e *Engine) { e.afterCheck = fn }
}
