// Package async provides utilities for parallel task execution.
//
// This package contains generic helpers for running multiple operations
// concurrently, collecting results, and handling errors. It's used for
// fanning out independent quota probe calls and other concurrent workflows.
package async

import (
	"context"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes multiple tasks in parallel and returns the first error encountered.
// All tasks are started concurrently, and the function waits for all to complete.
// If any task returns an error, the first error is returned after all tasks finish.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "templates", Func: g.writeTemplates},
//	    {Name: "parameters", Func: g.writeParameters},
//	}
//	if err := RunParallel(ctx, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task) error {
	return RunLimited(ctx, tasks, len(tasks))
}

// RunLimited executes tasks with at most limit goroutines running at once.
// All tasks are executed regardless of individual failures; the first error
// encountered is returned after every task has finished. A limit < 1 is
// treated as 1.
func RunLimited(ctx context.Context, tasks []Task, limit int) error {
	if len(tasks) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(tasks) {
		limit = len(tasks)
	}

	type result struct {
		name string
		err  error
	}

	taskChan := make(chan Task)
	resultChan := make(chan result, len(tasks))

	for range limit {
		go func() {
			for task := range taskChan {
				resultChan <- result{name: task.Name, err: task.Func(ctx)}
			}
		}()
	}

	go func() {
		for _, task := range tasks {
			taskChan <- task
		}
		close(taskChan)
	}()

	// Wait for all tasks to complete and collect first error
	var firstError error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil && firstError == nil {
			firstError = fmt.Errorf("task %s failed: %w", res.name, res.err)
		}
	}

	return firstError
}
