package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"todo-server/services/todo-api/internal/domain/task"
	"todo-server/services/todo-api/internal/utils/functional"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// ===============================================
// Tool Names
// ===============================================

const (
	ToolCreateTodo   = "create_todo"
	ToolListTodos    = "list_todos"
	ToolUpdateTodo   = "update_todo"
	ToolDeleteTodo   = "delete_todo"
	ToolCompleteTodo = "complete_todo"
)

// ===============================================
// Tool Arguments
// ===============================================

type CreateTodoArgs struct {
	Title       string  `json:"title" validate:"required,max=500"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
}

type ListTodosArgs struct {
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
}

type UpdateTodoArgs struct {
	TodoID      string  `json:"todo_id" validate:"required"`
	Title       *string `json:"title,omitempty" validate:"omitempty,max=500"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
}

type DeleteTodoArgs struct {
	TodoID string `json:"todo_id" validate:"required"`
}

type CompleteTodoArgs struct {
	TodoID    string `json:"todo_id" validate:"required"`
	Completed bool   `json:"completed"`
}

// ToolResult is the envelope handed back to the resolver after executing a
// tool. Failures are carried in Error so the model can read them and adjust;
// they are never surfaced as Go errors.
type ToolResult struct {
	OK      bool         `json:"ok"`
	Message string       `json:"message,omitempty"`
	Todo    *task.Task   `json:"todo,omitempty"`
	Todos   []*task.Task `json:"todos,omitempty"`
	Count   *int         `json:"count,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ===============================================
// Tool Registry
// ===============================================

// Registry exposes the task service to the resolver as a fixed set of tools.
// Every execution path injects the authenticated owner; tool arguments can
// never name a different user.
type Registry struct {
	tasks    *task.TaskService
	validate *validator.Validate
}

func NewRegistry(tasks *task.TaskService) *Registry {
	return &Registry{
		tasks:    tasks,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// decodeArgs unmarshals and validates a tool's raw arguments. The returned
// message is model facing.
func (r *Registry) decodeArgs(name string, rawArgs json.RawMessage, args any) string {
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, args); err != nil {
			return fmt.Sprintf("invalid arguments for %s", name)
		}
	}
	if err := r.validate.Struct(args); err != nil {
		return fmt.Sprintf("invalid arguments for %s: %v", name, err)
	}
	return ""
}

// Definitions returns the tool schemas advertised to the resolver. The set
// is fixed at construction and identical on every call.
func (r *Registry) Definitions() []openai.Tool {
	statusProp := jsonschema.Definition{
		Type:        jsonschema.String,
		Enum:        []string{string(task.StatusPending), string(task.StatusInProgress), string(task.StatusCompleted)},
		Description: "Task status",
	}

	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolCreateTodo,
				Description: "Create a new todo item with a title and optional description",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"title":       {Type: jsonschema.String, Description: "The todo title"},
						"description": {Type: jsonschema.String, Description: "Optional longer description"},
						"status":      statusProp,
					},
					Required: []string{"title"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolListTodos,
				Description: "List the user's todos, optionally filtered by status",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"status": statusProp,
					},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolUpdateTodo,
				Description: "Update a todo's title, description, or status",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"todo_id":     {Type: jsonschema.String, Description: "ID of the todo to update"},
						"title":       {Type: jsonschema.String, Description: "New title"},
						"description": {Type: jsonschema.String, Description: "New description"},
						"status":      statusProp,
					},
					Required: []string{"todo_id"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolDeleteTodo,
				Description: "Delete a todo permanently",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"todo_id": {Type: jsonschema.String, Description: "ID of the todo to delete"},
					},
					Required: []string{"todo_id"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ToolCompleteTodo,
				Description: "Mark a todo as completed or revert it to pending",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"todo_id":   {Type: jsonschema.String, Description: "ID of the todo"},
						"completed": {Type: jsonschema.Boolean, Description: "true to complete, false to revert to pending"},
					},
					Required: []string{"todo_id", "completed"},
				},
			},
		},
	}
}

// Execute runs one named tool on behalf of userID. Unknown tools, malformed
// arguments, and domain failures all come back as a ToolResult with Error
// set; the returned error is reserved for marshalling the envelope itself.
func (r *Registry) Execute(ctx context.Context, userID uint, name string, rawArgs json.RawMessage) (json.RawMessage, error) {
	result := r.dispatch(ctx, userID, name, rawArgs)

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to encode tool result")
	}
	return payload, nil
}

func (r *Registry) dispatch(ctx context.Context, userID uint, name string, rawArgs json.RawMessage) *ToolResult {
	switch name {
	case ToolCreateTodo:
		return r.createTodo(ctx, userID, rawArgs)
	case ToolListTodos:
		return r.listTodos(ctx, userID, rawArgs)
	case ToolUpdateTodo:
		return r.updateTodo(ctx, userID, rawArgs)
	case ToolDeleteTodo:
		return r.deleteTodo(ctx, userID, rawArgs)
	case ToolCompleteTodo:
		return r.completeTodo(ctx, userID, rawArgs)
	default:
		return &ToolResult{Error: fmt.Sprintf("unknown tool: %s", name)}
	}
}

func (r *Registry) createTodo(ctx context.Context, userID uint, rawArgs json.RawMessage) *ToolResult {
	var args CreateTodoArgs
	if msg := r.decodeArgs(ToolCreateTodo, rawArgs, &args); msg != "" {
		return &ToolResult{Error: msg}
	}

	input := task.CreateTaskInput{
		Title:       args.Title,
		Description: args.Description,
	}
	if args.Status != nil {
		status := task.TaskStatus(*args.Status)
		input.Status = &status
	}

	t, err := r.tasks.CreateTask(ctx, userID, input)
	if err != nil {
		return &ToolResult{Error: toolError(err)}
	}
	return &ToolResult{OK: true, Message: fmt.Sprintf("Created todo %q", t.Title), Todo: t}
}

func (r *Registry) listTodos(ctx context.Context, userID uint, rawArgs json.RawMessage) *ToolResult {
	var args ListTodosArgs
	if msg := r.decodeArgs(ToolListTodos, rawArgs, &args); msg != "" {
		return &ToolResult{Error: msg}
	}

	var status *task.TaskStatus
	if args.Status != nil {
		s := task.TaskStatus(*args.Status)
		status = &s
	}

	todos, err := r.tasks.ListTasks(ctx, userID, status)
	if err != nil {
		return &ToolResult{Error: toolError(err)}
	}

	count := len(todos)
	return &ToolResult{OK: true, Todos: todos, Count: &count}
}

func (r *Registry) updateTodo(ctx context.Context, userID uint, rawArgs json.RawMessage) *ToolResult {
	var args UpdateTodoArgs
	if msg := r.decodeArgs(ToolUpdateTodo, rawArgs, &args); msg != "" {
		return &ToolResult{Error: msg}
	}
	if args.Title == nil && args.Description == nil && args.Status == nil {
		return &ToolResult{Error: "update_todo requires at least one of title, description, or status"}
	}

	input := task.UpdateTaskInput{
		Title:       args.Title,
		Description: args.Description,
	}
	if args.Status != nil {
		status := task.TaskStatus(*args.Status)
		input.Status = &status
	}

	t, err := r.tasks.UpdateTask(ctx, userID, args.TodoID, input)
	if err != nil {
		return &ToolResult{Error: toolError(err)}
	}
	return &ToolResult{OK: true, Message: fmt.Sprintf("Updated todo %q", t.Title), Todo: t}
}

func (r *Registry) deleteTodo(ctx context.Context, userID uint, rawArgs json.RawMessage) *ToolResult {
	var args DeleteTodoArgs
	if msg := r.decodeArgs(ToolDeleteTodo, rawArgs, &args); msg != "" {
		return &ToolResult{Error: msg}
	}

	deletedID, err := r.tasks.DeleteTask(ctx, userID, args.TodoID)
	if err != nil {
		return &ToolResult{Error: toolError(err)}
	}
	return &ToolResult{OK: true, Message: fmt.Sprintf("Deleted todo %s", deletedID)}
}

func (r *Registry) completeTodo(ctx context.Context, userID uint, rawArgs json.RawMessage) *ToolResult {
	var args CompleteTodoArgs
	if msg := r.decodeArgs(ToolCompleteTodo, rawArgs, &args); msg != "" {
		return &ToolResult{Error: msg}
	}

	t, err := r.tasks.SetCompletion(ctx, userID, args.TodoID, args.Completed)
	if err != nil {
		return &ToolResult{Error: toolError(err)}
	}

	verb := "Marked"
	if !args.Completed {
		verb = "Reopened"
	}
	return &ToolResult{OK: true, Message: fmt.Sprintf("%s todo %q", verb, t.Title), Todo: t}
}

// ToolNames lists the registered tool names in advertised order.
func (r *Registry) ToolNames() []string {
	return functional.Map(r.Definitions(), func(t openai.Tool) string {
		return t.Function.Name
	})
}

// toolError converts a domain error into the model-facing message, keeping
// the platform error details out of the transcript.
func toolError(err error) string {
	if pe, ok := platformerrors.GetPlatformError(err); ok {
		return pe.Message
	}
	return err.Error()
}
