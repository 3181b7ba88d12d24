package deploy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/azprov/azprov/internal/plan"
	"github.com/azprov/azprov/internal/platform/azure"
	"github.com/azprov/azprov/internal/util/async"
)

// ResourceClient is the slice of the ARM surface teardown needs.
type ResourceClient interface {
	ListByResourceGroup(ctx context.Context, resourceGroup string) ([]azure.Resource, error)
	DeleteByID(ctx context.Context, resourceID, resourceType string) error
	DeleteResourceGroup(ctx context.Context, name string) error
}

// DeleteFailure records one resource that could not be deleted.
type DeleteFailure struct {
	ID    string
	Type  string
	Error string
}

// DestroyResult reports what a teardown run accomplished.
type DestroyResult struct {
	Deleted      []string
	Failed       []DeleteFailure
	GroupDeleted bool

	// GroupError carries the resource-group deletion failure, e.g. a
	// vault with purge protection blocking the delete.
	GroupError string
}

// Destroyer deletes a resource group's contents in dependency order,
// then the group itself.
type Destroyer struct {
	client ResourceClient

	// Concurrency bounds parallel deletes within one batch.
	Concurrency int
}

// NewDestroyer creates a destroyer over the given resource client.
func NewDestroyer(client ResourceClient) *Destroyer {
	return &Destroyer{client: client, Concurrency: 4}
}

// Destroy lists the group's resources, deletes them batch by batch
// following the teardown order, and finally deletes the group. Types
// within a batch are deleted concurrently; batches run strictly in
// sequence. Individual failures are recorded and do not stop later
// batches. The group deletion failure, if any, is both recorded on the
// result and returned as the error.
func (d *Destroyer) Destroy(ctx context.Context, resourceGroup string) (*DestroyResult, error) {
	resources, err := d.client.ListByResourceGroup(ctx, resourceGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s for teardown: %w", resourceGroup, err)
	}

	byType := make(map[string][]azure.Resource)
	for _, r := range resources {
		key := strings.ToLower(r.Type)
		byType[key] = append(byType[key], r)
	}
	types := lo.UniqBy(lo.Map(resources, func(r azure.Resource, _ int) string { return r.Type }), strings.ToLower)

	result := &DestroyResult{}
	var mu sync.Mutex

	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	for _, batch := range plan.TeardownBatches(types) {
		var tasks []async.Task
		for _, resourceType := range batch {
			for _, resource := range byType[strings.ToLower(resourceType)] {
				resource := resource
				tasks = append(tasks, async.Task{
					Name: resource.ID,
					Func: func(ctx context.Context) error {
						if err := d.client.DeleteByID(ctx, resource.ID, resource.Type); err != nil {
							mu.Lock()
							result.Failed = append(result.Failed, DeleteFailure{
								ID:    resource.ID,
								Type:  resource.Type,
								Error: err.Error(),
							})
							mu.Unlock()
							return nil
						}
						mu.Lock()
						result.Deleted = append(result.Deleted, resource.ID)
						mu.Unlock()
						return nil
					},
				})
			}
		}
		if err := async.RunLimited(ctx, tasks, concurrency); err != nil {
			return result, err
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	// The group goes last, after every member resource has been
	// processed. Purge protection or locks surface here.
	if err := d.client.DeleteResourceGroup(ctx, resourceGroup); err != nil {
		result.GroupError = err.Error()
		return result, fmt.Errorf("resource group %s could not be deleted: %w", resourceGroup, err)
	}
	result.GroupDeleted = true

	return result, nil
}
