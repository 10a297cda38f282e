package model

// Decorator adjusts a built form model before it is rendered, for example to
// reword help text or add page metadata such as submitLabel.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function; a nil function is a no-op.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(form)
}
