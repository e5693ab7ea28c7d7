package main

import (
	"fmt"
	"path/filepath"
	"strings"

	magnify "github.com/bnlif/magnify_go/pkg"
)

// treePrefix marks an input tag naming per-module bad channel lists.
const treePrefix = "tree:"

type source interface {
	magnify.GridSource
	magnify.RegionSource
}

type sink interface {
	WriteGrid(g *magnify.Grid) error
	WriteVector(v *magnify.Vector) error
	WriteBadChannels(tag string, regions []magnify.BadChannelRegion) error
}

// outputPath is <outDir>/<input name without extension>-<suffix>.h5
func outputPath(inPath string, outDir string, suffix string) string {
	name := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	return filepath.Join(outDir, fmt.Sprintf("%s-%s.h5", name, suffix))
}

// preprocess merges the inputs selected by the in and out tags into dst.
func preprocess(src source, dst sink, config magnify.Configuration) error {
	if strings.HasPrefix(config.InTag, treePrefix) {
		return mergeTrees(src, dst, config)
	}

	layout := magnify.DefaultPlaneLayout()
	switch config.OutTag {
	case "threshold":
		return mergeThresholds(src, dst, layout, config)
	case "orig":
		opts := magnify.MergeOptions{Scale: config.OutputScale}
		return mergePlanes(src, dst, layout, config.KindOr(magnify.Raw), magnify.Int32, opts, config)
	default:
		opts := magnify.MergeOptions{
			SubtractBaseline: config.SubtractBaseline,
			Scale:            config.OutputScale,
		}
		return mergePlanes(src, dst, layout, config.KindOr(magnify.Deconvolved), magnify.Float32, opts, config)
	}
}

func mergeTrees(src source, dst sink, config magnify.Configuration) error {
	name := strings.TrimPrefix(config.InTag, treePrefix)
	regions, found, err := magnify.MergeBadChannels(src, name)
	if err != nil {
		return err
	}
	if found == 0 {
		logger.Info("No. of bad channels: 0", "preprocess")
		return nil
	}

	outTag := config.OutTag
	if outTag == "" {
		outTag = name
	}
	logger.Info(fmt.Sprintf("No. of bad channel regions: %d", len(regions)), "preprocess")
	return dst.WriteBadChannels(outTag, regions)
}

func mergeThresholds(src source, dst sink, layout magnify.PlaneLayout, config magnify.Configuration) error {
	vectors := make([]*magnify.Vector, 0, len(magnify.Planes))
	for _, plane := range magnify.Planes {
		v, err := layout.NewPlaneVector(plane, plane.Tag(config.OutTag), magnify.Int32)
		if err != nil {
			return err
		}
		if err := magnify.MergeVectorByTag(src, v, plane.Tag(config.InTag)); err != nil {
			return err
		}
		vectors = append(vectors, v)
	}
	for _, v := range vectors {
		if err := dst.WriteVector(v); err != nil {
			return err
		}
	}
	return nil
}

// mergePlanes reads every plane's input first, merges the planes (in
// parallel when configured) and writes the outputs once all merges succeeded.
func mergePlanes(src source, dst sink, layout magnify.PlaneLayout, kind magnify.DatasetKind, storage magnify.Storage, opts magnify.MergeOptions, config magnify.Configuration) error {
	inputs := make(map[magnify.Plane]*magnify.Grid, len(magnify.Planes))
	for _, plane := range magnify.Planes {
		tag := plane.Tag(config.InTag)
		g, err := src.Grid(tag)
		if err != nil {
			return fmt.Errorf("error reading grid %s: %w", tag, err)
		}
		inputs[plane] = g
	}

	job := func(plane magnify.Plane) (*magnify.Grid, error) {
		dst, err := layout.NewPlaneGrid(plane, plane.Tag(config.OutTag), config.NTicks, kind, storage)
		if err != nil {
			return nil, err
		}
		if err := magnify.MergeGrids(dst, []*magnify.Grid{inputs[plane]}, opts); err != nil {
			return nil, err
		}
		return dst, nil
	}

	grids, err := runPlanes(magnify.Planes, job, config.Parallel)
	if err != nil {
		return err
	}
	for _, g := range grids {
		if err := dst.WriteGrid(g); err != nil {
			return err
		}
	}
	return nil
}
