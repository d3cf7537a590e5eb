package main

import (
	"testing"
)

func TestDBAssignmentLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"db", "assignment", "add", "ps1", "--due", "2026-03-01 23:59:59"}, env.configPath)
	if err != nil {
		t.Fatalf("assignment add: %v", err)
	}
	requireContains(t, out, "Registered assignment ps1")

	out, _, err = runCLI(t, []string{"db", "assignment", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("assignment list: %v", err)
	}
	requireContains(t, out, "ps1")
	requireContains(t, out, "2026-03-01 23:59:59")

	out, _, err = runCLI(t, []string{"db", "assignment", "remove", "ps1"}, env.configPath)
	if err != nil {
		t.Fatalf("assignment remove: %v", err)
	}
	requireContains(t, out, "Removed assignment ps1")
}

func TestDBAssignmentAddRejectsBadDueDate(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"db", "assignment", "add", "ps1", "--due", "tomorrow"}, env.configPath)
	if err == nil {
		t.Fatal("expected an error for an unparseable due date")
	}
}

func TestDBStudentLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{
		"db", "student", "add", "hacker",
		"--first-name", "Alyssa", "--last-name", "Hacker", "--email", "alyssa@example.com",
	}, env.configPath)
	if err != nil {
		t.Fatalf("student add: %v", err)
	}
	requireContains(t, out, "Registered student hacker")

	out, _, err = runCLI(t, []string{"db", "student", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("student list: %v", err)
	}
	requireContains(t, out, "Alyssa")

	out, _, err = runCLI(t, []string{"db", "student", "remove", "hacker"}, env.configPath)
	if err != nil {
		t.Fatalf("student remove: %v", err)
	}
	requireContains(t, out, "Removed student hacker")
}
