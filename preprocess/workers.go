package main

import (
	"errors"
	"fmt"

	magnify "github.com/bnlif/magnify_go/pkg"
)

type mergeJob func(plane magnify.Plane) (*magnify.Grid, error)

type planeResult struct {
	Plane magnify.Plane
	Grid  *magnify.Grid
	Err   error
}

func worker(plane magnify.Plane, job mergeJob, results chan<- planeResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("worker for plane %s recovered from panic: %v", plane, r)
			results <- planeResult{Plane: plane, Err: err}
		}
	}()

	if configuration.Verbosity > 1 {
		logger.Info(fmt.Sprintf("Worker processing plane %s", plane), "workers")
	}
	grid, err := job(plane)
	results <- planeResult{Plane: plane, Grid: grid, Err: err}
}

// runPlanes runs job for every plane, one goroutine per plane when parallel
// is set. It returns once every plane is done, with grids in plane order.
func runPlanes(planes []magnify.Plane, job mergeJob, parallel bool) ([]*magnify.Grid, error) {
	results := make(chan planeResult, len(planes))
	for _, plane := range planes {
		if parallel {
			go worker(plane, job, results)
		} else {
			worker(plane, job, results)
		}
	}

	byPlane := make(map[magnify.Plane]*magnify.Grid, len(planes))
	var errs []error
	for range planes {
		result := <-results
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("plane %s: %w", result.Plane, result.Err))
			continue
		}
		byPlane[result.Plane] = result.Grid
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	grids := make([]*magnify.Grid, 0, len(planes))
	for _, plane := range planes {
		grids = append(grids, byPlane[plane])
	}
	return grids, nil
}
