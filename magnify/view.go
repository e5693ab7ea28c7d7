package main

import (
	"errors"
	"fmt"
	"path/filepath"

	magnify "github.com/bnlif/magnify_go/pkg"
	"github.com/bnlif/magnify_go/pkg/render"
)

type source interface {
	magnify.GridSource
	magnify.RegionSource
}

// loadSession reads the grid of every plane tagged with config.InTag. Planes
// without a grid are skipped, but at least one must be present. Grids keep
// their stored kind unless the configuration sets one.
func loadSession(src source, config magnify.Configuration) (*magnify.Session, error) {
	session := magnify.NewSession(nil)
	session.SetZRange(config.ZMin, config.ZMax)

	loaded := 0
	for _, plane := range magnify.Planes {
		tag := plane.Tag(config.InTag)
		g, err := src.Grid(tag)
		if errors.Is(err, magnify.ErrNotFound) {
			logger.Error(fmt.Sprintf("no grid %s, skipping plane %s", tag, plane))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading grid %s: %w", tag, err)
		}
		g.Kind = config.KindOr(g.Kind)
		g.SetScale(config.Scale)
		session.AddGrid(g)
		loaded++
	}
	if loaded == 0 {
		return nil, &magnify.ErrMissingTag{Tag: magnify.PlaneU.Tag(config.InTag)}
	}
	return session, nil
}

// fileMask reads the merged bad channel list stored in the input file.
func fileMask(src source, tag string) (*magnify.BadChannelSet, error) {
	regions, err := src.BadChannels(tag)
	if errors.Is(err, magnify.ErrNotFound) {
		return magnify.NewBadChannelSet(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return magnify.NewBadChannelSet(regions), nil
}

// applyThreshold runs the configured threshold on every loaded plane.
func applyThreshold(session *magnify.Session, src source, config magnify.Configuration) (map[magnify.Plane][]magnify.HighlightedCell, error) {
	highlighted := make(map[magnify.Plane][]magnify.HighlightedCell)
	for _, plane := range magnify.Planes {
		if _, err := session.Grid(plane); err != nil {
			continue
		}

		var cells []magnify.HighlightedCell
		var err error
		if config.ChannelThreshold != "" {
			tag := plane.Tag(config.ChannelThreshold)
			thresholds, readErr := src.Vector(tag)
			if readErr != nil {
				return nil, fmt.Errorf("error reading channel threshold %s: %w", tag, readErr)
			}
			cells, err = session.SetChannelThreshold(plane, thresholds, config.ThresholdScaling)
		} else {
			cells, err = session.SetThreshold(plane, config.Threshold)
		}
		if err != nil {
			return nil, err
		}
		highlighted[plane] = cells
	}
	return highlighted, nil
}

// projections extracts the configured channel and tick projections.
func projections(session *magnify.Session, config magnify.Configuration) ([]*magnify.Projection, error) {
	var projs []*magnify.Projection
	if config.Channel >= 0 {
		p, err := session.ChannelProjection(config.Channel)
		if err != nil {
			return nil, err
		}
		projs = append(projs, p)
	}
	if config.Tick >= 0 {
		for _, plane := range magnify.Planes {
			if _, err := session.Grid(plane); err != nil {
				continue
			}
			p, err := session.TickProjection(plane, config.Tick)
			if err != nil {
				return nil, err
			}
			projs = append(projs, p)
		}
	}
	return projs, nil
}

func plotPath(config magnify.Configuration, name string) string {
	return filepath.Join(config.PlotDir, fmt.Sprintf("%s.%s", name, config.PlotFormat))
}

// view runs thresholds and projections on src and saves every plot.
func view(src source, mask magnify.BadChannelMask, config magnify.Configuration) error {
	session, err := loadSession(src, config)
	if err != nil {
		return err
	}
	defer session.Close()
	session.SetMask(mask, config.ExcludeBadChannels)

	scale, err := render.NewColorScale(session.ZMin, session.ZMax)
	if err != nil {
		return err
	}

	highlighted, err := applyThreshold(session, src, config)
	if err != nil {
		return err
	}
	for _, plane := range magnify.Planes {
		g, err := session.Grid(plane)
		if err != nil {
			continue
		}
		if err := render.Grid(g, scale, plotPath(config, g.Name)); err != nil {
			return err
		}
		cells := highlighted[plane]
		logger.Info(fmt.Sprintf("%s: %d cells above threshold", g.Name, len(cells)), "main")
		if err := render.Cells(g, cells, scale, plotPath(config, g.Name+"_cells")); err != nil {
			return err
		}
	}

	projs, err := projections(session, config)
	if err != nil {
		return err
	}
	for _, p := range projs {
		if err := render.Projection(p, plotPath(config, p.Name)); err != nil {
			return err
		}
	}
	return nil
}
