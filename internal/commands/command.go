package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeInstall  Type = "install"
	TypeRemove   Type = "remove"
	TypeUpdate   Type = "update"
	TypeCategory Type = "category"
	TypeFilter   Type = "filter"
	TypeRefresh  Type = "refresh"
)

// Names lists the palette commands in the order they are suggested.
var Names = []Type{TypeInstall, TypeUpdate, TypeRemove, TypeFilter, TypeCategory, TypeRefresh}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// TargetArgs names a contribution; All is set for "all".
type TargetArgs struct {
	Name string
	All  bool
}

type CategoryArgs struct {
	Category string
	All      bool
}

type FilterArgs struct {
	Text string
}

type Command struct {
	Type     Type
	Raw      string
	Install  *TargetArgs
	Remove   *TargetArgs
	Update   *TargetArgs
	Category *CategoryArgs
	Filter   *FilterArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(raw, parts[0]))

	switch Type(head) {
	case TypeInstall:
		name, err := requireName(TypeInstall, rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeInstall, Raw: input, Install: &TargetArgs{Name: name}}, nil
	case TypeRemove:
		name, err := requireName(TypeRemove, rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeRemove, Raw: input, Remove: &TargetArgs{Name: name}}, nil
	case TypeUpdate:
		name, err := requireName(TypeUpdate, rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeUpdate, Raw: input, Update: &TargetArgs{Name: name, All: strings.EqualFold(name, "all")}}, nil
	case TypeCategory:
		name, err := requireName(TypeCategory, rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeCategory, Raw: input, Category: &CategoryArgs{Category: name, All: strings.EqualFold(name, "all")}}, nil
	case TypeFilter:
		// an empty filter clears the field
		return Command{Type: TypeFilter, Raw: input, Filter: &FilterArgs{Text: rest}}, nil
	case TypeRefresh:
		if rest != "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "refresh takes no arguments"}
		}
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func requireName(t Type, rest string) (string, error) {
	name := strings.Join(strings.Fields(rest), " ")
	if name == "" {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a name", t)}
	}
	return name, nil
}
