package agent_test

import (
	"context"
	"encoding/json"
	"testing"

	"todo-server/services/todo-api/internal/domain/agent"
	"todo-server/services/todo-api/internal/domain/task"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// fakeTaskRepository backs the real task service in agent tests.
type fakeTaskRepository struct {
	nextID uint
	tasks  map[uint]*task.Task
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{tasks: make(map[uint]*task.Task)}
}

func (f *fakeTaskRepository) Create(ctx context.Context, t *task.Task) error {
	f.nextID++
	t.ID = f.nextID
	clone := *t
	f.tasks[t.ID] = &clone
	return nil
}

func (f *fakeTaskRepository) FindByFilter(ctx context.Context, filter task.TaskFilter) ([]*task.Task, error) {
	var out []*task.Task
	for id := uint(1); id <= f.nextID; id++ {
		t, ok := f.tasks[id]
		if !ok {
			continue
		}
		if filter.UserID != nil && t.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeTaskRepository) FindByPublicID(ctx context.Context, publicID string) (*task.Task, error) {
	for _, t := range f.tasks {
		if t.PublicID == publicID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "task not found", nil, "00000000-0000-4000-8000-000000000003")
}

func (f *fakeTaskRepository) Count(ctx context.Context, filter task.TaskFilter) (int64, error) {
	items, _ := f.FindByFilter(ctx, filter)
	return int64(len(items)), nil
}

func (f *fakeTaskRepository) Update(ctx context.Context, t *task.Task) error {
	clone := *t
	f.tasks[t.ID] = &clone
	return nil
}

func (f *fakeTaskRepository) Delete(ctx context.Context, id uint) error {
	delete(f.tasks, id)
	return nil
}

func execute(t *testing.T, registry *agent.Registry, userID uint, tool, args string) agent.ToolResult {
	t.Helper()
	payload, err := registry.Execute(context.Background(), userID, tool, json.RawMessage(args))
	if err != nil {
		t.Fatalf("Execute(%s) returned error: %v", tool, err)
	}
	var result agent.ToolResult
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("tool result is not valid JSON: %v", err)
	}
	return result
}

func TestRegistryDefinitions(t *testing.T) {
	registry := agent.NewRegistry(task.NewTaskService(newFakeTaskRepository()))

	names := registry.ToolNames()
	expected := []string{"create_todo", "list_todos", "update_todo", "delete_todo", "complete_todo"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d tools, got %d", len(expected), len(names))
	}
	for i, want := range expected {
		if names[i] != want {
			t.Errorf("tool %d: expected %s, got %s", i, want, names[i])
		}
	}
}

func TestCreateAndListRoundTrip(t *testing.T) {
	registry := agent.NewRegistry(task.NewTaskService(newFakeTaskRepository()))

	created := execute(t, registry, 1, "create_todo", `{"title":"Buy groceries","description":"milk and eggs"}`)
	if !created.OK {
		t.Fatalf("create_todo failed: %s", created.Error)
	}
	if created.Todo == nil || created.Todo.Title != "Buy groceries" {
		t.Fatalf("unexpected created todo: %+v", created.Todo)
	}

	listed := execute(t, registry, 1, "list_todos", `{}`)
	if !listed.OK || listed.Count == nil || *listed.Count != 1 {
		t.Fatalf("expected one listed todo, got %+v", listed)
	}
}

func TestToolErrorsAreResultsNotErrors(t *testing.T) {
	registry := agent.NewRegistry(task.NewTaskService(newFakeTaskRepository()))

	cases := []struct {
		name string
		tool string
		args string
	}{
		{"unknown tool", "drop_database", `{}`},
		{"malformed args", "create_todo", `{"title":42}`},
		{"empty title", "create_todo", `{"title":"  "}`},
		{"missing todo", "delete_todo", `{"todo_id":"task_missing00000000"}`},
		{"no update fields", "update_todo", `{"todo_id":"task_missing00000000"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := execute(t, registry, 1, tc.tool, tc.args)
			if result.OK {
				t.Error("expected failure result")
			}
			if result.Error == "" {
				t.Error("expected error message in result")
			}
		})
	}
}

func TestToolOwnershipInjected(t *testing.T) {
	registry := agent.NewRegistry(task.NewTaskService(newFakeTaskRepository()))

	created := execute(t, registry, 1, "create_todo", `{"title":"private"}`)
	id := created.Todo.PublicID

	// Another user's agent cannot see or touch the todo, and the failure is
	// indistinguishable from a missing one.
	listed := execute(t, registry, 2, "list_todos", `{}`)
	if listed.Count == nil || *listed.Count != 0 {
		t.Errorf("user 2 should see no todos, got %+v", listed)
	}

	deleted := execute(t, registry, 2, "delete_todo", `{"todo_id":"`+id+`"}`)
	if deleted.OK || deleted.Error == "" {
		t.Errorf("expected not-found style failure for foreign delete, got %+v", deleted)
	}

	still := execute(t, registry, 1, "list_todos", `{}`)
	if still.Count == nil || *still.Count != 1 {
		t.Errorf("owner's todo should survive foreign delete, got %+v", still)
	}
}

func TestCompleteTodoToggle(t *testing.T) {
	registry := agent.NewRegistry(task.NewTaskService(newFakeTaskRepository()))

	created := execute(t, registry, 1, "create_todo", `{"title":"laundry"}`)
	id := created.Todo.PublicID

	done := execute(t, registry, 1, "complete_todo", `{"todo_id":"`+id+`","completed":true}`)
	if !done.OK || done.Todo.Status != task.StatusCompleted {
		t.Fatalf("expected completed todo, got %+v", done)
	}

	reopened := execute(t, registry, 1, "complete_todo", `{"todo_id":"`+id+`","completed":false}`)
	if !reopened.OK || reopened.Todo.Status != task.StatusPending {
		t.Fatalf("expected pending todo after reopen, got %+v", reopened)
	}
}

func TestUpdateTodoFields(t *testing.T) {
	registry := agent.NewRegistry(task.NewTaskService(newFakeTaskRepository()))

	created := execute(t, registry, 1, "create_todo", `{"title":"old title"}`)
	id := created.Todo.PublicID

	updated := execute(t, registry, 1, "update_todo", `{"todo_id":"`+id+`","title":"new title","status":"in_progress"}`)
	if !updated.OK {
		t.Fatalf("update_todo failed: %s", updated.Error)
	}
	if updated.Todo.Title != "new title" || updated.Todo.Status != task.StatusInProgress {
		t.Fatalf("unexpected updated todo: %+v", updated.Todo)
	}
}
