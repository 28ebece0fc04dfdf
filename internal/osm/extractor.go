// Package osm adapts an OSM PBF file to the pipeline's Extractor port.
// PBF decoding is delegated to paulmach/osm; all tag parsing and filtering
// lives here.
package osm

import (
	"context"
	"fmt"
	"iter"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
	"github.com/ny-randriantsarafara/chorographer/internal/model"
)

// Extractor streams Road, POI and Zone entities from one PBF file. Node
// locations (and, for zones, way geometries) are collected once on first
// use and cached; ways and relations in a PBF reference nodes by id only.
type Extractor struct {
	path string
	log  *zap.Logger

	mu    sync.Mutex
	nodes map[osm.NodeID]geo.Coordinates
	ways  map[osm.WayID][]geo.Coordinates
}

// NewExtractor validates that the PBF file exists.
func NewExtractor(path string, log *zap.Logger) (*Extractor, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pbf file not found: %w", err)
	}
	return &Extractor{path: path, log: log}, nil
}

// scan opens the file and walks every object of interest, skipping the
// object classes the caller does not need.
func (e *Extractor) scan(ctx context.Context, skipNodes, skipWays, skipRelations bool, visit func(osm.Object) bool) error {
	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("open pbf: %w", err)
	}
	defer f.Close()

	scanner := osmpbf.New(ctx, f, runtime.GOMAXPROCS(0))
	defer scanner.Close()
	scanner.SkipNodes = skipNodes
	scanner.SkipWays = skipWays
	scanner.SkipRelations = skipRelations

	for scanner.Scan() {
		if !visit(scanner.Object()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan pbf: %w", err)
	}
	return nil
}

// nodeLocations collects coordinates for every node in the file.
func (e *Extractor) nodeLocations(ctx context.Context) (map[osm.NodeID]geo.Coordinates, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.nodes != nil {
		return e.nodes, nil
	}

	e.log.Info("collecting node locations", zap.String("file", e.path))
	nodes := make(map[osm.NodeID]geo.Coordinates)
	err := e.scan(ctx, false, true, true, func(obj osm.Object) bool {
		if n, ok := obj.(*osm.Node); ok {
			if c, err := geo.NewCoordinates(n.Lat, n.Lon); err == nil {
				nodes[n.ID] = c
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	e.nodes = nodes
	e.log.Info("collected node locations", zap.Int("count", len(nodes)))
	return nodes, nil
}

// wayGeometries collects the full geometry of every way, for assembling
// relation boundaries.
func (e *Extractor) wayGeometries(ctx context.Context) (map[osm.WayID][]geo.Coordinates, error) {
	nodes, err := e.nodeLocations(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ways != nil {
		return e.ways, nil
	}

	e.log.Info("collecting way geometries")
	ways := make(map[osm.WayID][]geo.Coordinates)
	err = e.scan(ctx, true, false, true, func(obj osm.Object) bool {
		if w, ok := obj.(*osm.Way); ok {
			coords := resolveWay(w, nodes)
			if len(coords) > 0 {
				ways[w.ID] = coords
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	e.ways = ways
	e.log.Info("collected way geometries", zap.Int("count", len(ways)))
	return ways, nil
}

func resolveWay(w *osm.Way, nodes map[osm.NodeID]geo.Coordinates) []geo.Coordinates {
	coords := make([]geo.Coordinates, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		if c, ok := nodes[wn.ID]; ok {
			coords = append(coords, c)
		}
	}
	return coords
}

// Roads streams highway-tagged ways as Road entities.
func (e *Extractor) Roads(ctx context.Context) iter.Seq2[model.Road, error] {
	return func(yield func(model.Road, error) bool) {
		nodes, err := e.nodeLocations(ctx)
		if err != nil {
			yield(model.Road{}, err)
			return
		}

		e.log.Info("extracting roads")
		count := 0
		err = e.scan(ctx, true, false, true, func(obj osm.Object) bool {
			w, ok := obj.(*osm.Way)
			if !ok {
				return true
			}
			tags := w.Tags.Map()
			if !roadHighwayTypes[tags["highway"]] {
				return true
			}
			road, ok := transformRoad(w, tags, nodes)
			if !ok {
				return true
			}
			count++
			return yield(road, nil)
		})
		if err != nil {
			yield(model.Road{}, err)
			return
		}
		e.log.Info("extracted roads", zap.Int("count", count))
	}
}

func transformRoad(w *osm.Way, tags map[string]string, nodes map[osm.NodeID]geo.Coordinates) (model.Road, bool) {
	road, err := model.NewRoad(int64(w.ID), resolveWay(w, nodes), parseRoadType(tags["highway"]))
	if err != nil {
		return model.Road{}, false
	}
	road.Surface = parseSurface(tags["surface"])
	road.Smoothness = parseSmoothness(tags["smoothness"])
	road.Name = tags["name"]
	road.Lanes = parseLanes(tags)
	road.Oneway = parseOneway(tags)
	road.MaxSpeed = parseMaxSpeed(tags)
	road.Tags = tags
	return road, true
}

// POIs streams tagged nodes carrying amenity, shop or tourism tags.
func (e *Extractor) POIs(ctx context.Context) iter.Seq2[model.POI, error] {
	return func(yield func(model.POI, error) bool) {
		e.log.Info("extracting POIs")
		count := 0
		err := e.scan(ctx, false, true, true, func(obj osm.Object) bool {
			n, ok := obj.(*osm.Node)
			if !ok {
				return true
			}
			tags := n.Tags.Map()
			if tags["amenity"] == "" && tags["shop"] == "" && tags["tourism"] == "" {
				return true
			}
			poi, ok := transformPOI(n, tags)
			if !ok {
				return true
			}
			count++
			return yield(poi, nil)
		})
		if err != nil {
			yield(model.POI{}, err)
			return
		}
		e.log.Info("extracted POIs", zap.Int("count", count))
	}
}

func transformPOI(n *osm.Node, tags map[string]string) (model.POI, bool) {
	coords, err := geo.NewCoordinates(n.Lat, n.Lon)
	if err != nil {
		return model.POI{}, false
	}

	category, subcategory := categorizePOI(tags)
	return model.POI{
		ID:           int64(n.ID),
		Coordinates:  coords,
		Category:     category,
		Subcategory:  subcategory,
		Name:         tags["name"],
		Address:      addressFromTags(tags),
		Phone:        firstTag(tags, "phone", "contact:phone"),
		OpeningHours: tags["opening_hours"],
		Website:      firstTag(tags, "website", "contact:website"),
		Tags:         tags,
	}, true
}

// Zones streams administrative boundary relations, assembling each outer
// ring from the member ways in listed order.
func (e *Extractor) Zones(ctx context.Context) iter.Seq2[model.Zone, error] {
	return func(yield func(model.Zone, error) bool) {
		ways, err := e.wayGeometries(ctx)
		if err != nil {
			yield(model.Zone{}, err)
			return
		}

		e.log.Info("extracting zones")
		count := 0
		err = e.scan(ctx, true, true, false, func(obj osm.Object) bool {
			r, ok := obj.(*osm.Relation)
			if !ok {
				return true
			}
			tags := r.Tags.Map()
			if tags["boundary"] != "administrative" {
				return true
			}
			zone, ok := transformZone(r, tags, ways)
			if !ok {
				return true
			}
			count++
			return yield(zone, nil)
		})
		if err != nil {
			yield(model.Zone{}, err)
			return
		}
		e.log.Info("extracted zones", zap.Int("count", count))
	}
}

func transformZone(r *osm.Relation, tags map[string]string, ways map[osm.WayID][]geo.Coordinates) (model.Zone, bool) {
	zoneType, level, ok := parseZoneType(tags["admin_level"])
	if !ok {
		return model.Zone{}, false
	}
	name := tags["name"]
	if name == "" {
		return model.Zone{}, false
	}

	var ring []geo.Coordinates
	for _, member := range r.Members {
		if member.Type != osm.TypeWay || member.Role == "inner" {
			continue
		}
		ring = append(ring, ways[osm.WayID(member.Ref)]...)
	}

	zone, err := model.NewZone(int64(r.ID), ring, zoneType, level, name)
	if err != nil {
		return model.Zone{}, false
	}
	zone.ISOCode = tags["ISO3166-2"]
	if pop, err := strconv.Atoi(tags["population"]); err == nil {
		zone.Population = pop
	}
	zone.Tags = tags
	return zone, true
}
