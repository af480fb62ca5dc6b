package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Install  func(TargetArgs) (Result, error)
	Remove   func(TargetArgs) (Result, error)
	Update   func(TargetArgs) (Result, error)
	Category func(CategoryArgs) (Result, error)
	Filter   func(FilterArgs) (Result, error)
	Refresh  func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeInstall:
		if handlers.Install == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Install(*cmd.Install)
	case TypeRemove:
		if handlers.Remove == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Remove(*cmd.Remove)
	case TypeUpdate:
		if handlers.Update == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Update(*cmd.Update)
	case TypeCategory:
		if handlers.Category == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Category(*cmd.Category)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Filter(*cmd.Filter)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
