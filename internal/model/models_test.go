package model

import "testing"

func TestTaskStatus_Valid(t *testing.T) {
	for _, info := range Statuses() {
		if !info.Status.Valid() {
			t.Fatalf("expected %q to be valid", info.Status)
		}
	}
	for _, s := range []TaskStatus{"", "todo", "Archived", "In Progress"} {
		if s.Valid() {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestNewTask_Defaults(t *testing.T) {
	task := NewTask(5)
	if task.ListID != 5 || task.Title != "New Task" || task.Content != "" || task.Status != StatusTodo {
		t.Fatalf("unexpected defaults: %+v", task)
	}
}

func TestList_OwnedBy(t *testing.T) {
	owner := uint(7)
	l := NewList(&owner)
	if !l.OwnedBy(7) {
		t.Fatalf("expected owner 7")
	}
	if l.OwnedBy(8) {
		t.Fatalf("expected user 8 not to own list")
	}
	global := NewList(nil)
	if global.OwnedBy(7) {
		t.Fatalf("global list has no owner")
	}
	if global.Name != "New List" || global.Color != "#268AFF" {
		t.Fatalf("unexpected list defaults: %+v", global)
	}
}
