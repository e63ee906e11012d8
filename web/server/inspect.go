package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// InspectResponse describes the surface seen through one pixel
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FaceIndex    int                    `json:"faceIndex"`
	Color        string                 `json:"color"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
	Material     map[string]interface{} `json:"material,omitempty"`
}

func hexColor(c core.Color) string {
	c8 := c.To8()
	return fmt.Sprintf("#%02x%02x%02x", c8.R, c8.G, c8.B)
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// boundedObject is implemented by objects with a finite extent
type boundedObject interface {
	BoundingBox() core.AABB
}

// extractGeometryInfo names the object type and its shape parameters
func extractGeometryInfo(obj geometry.Object) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	name := "unknown"
	switch o := obj.(type) {
	case *geometry.Sphere:
		name = "sphere"
		properties["center"] = vecArray(o.Center)
		properties["radius"] = o.Radius
	case *geometry.Plane:
		name = "plane"
		properties["point"] = vecArray(o.Point)
		properties["normal"] = vecArray(o.Normal)
	case *geometry.Cylinder:
		name = "cylinder"
		properties["position"] = vecArray(o.Position)
		properties["radius"] = o.Radius
	case *geometry.Torus:
		name = "torus"
		properties["center"] = vecArray(o.Center)
		properties["majorRadius"] = o.MajorRadius
		properties["minorRadius"] = o.MinorRadius
	case *geometry.TriangleMesh:
		name = "mesh"
		properties["faces"] = o.Mesh().NumFaces()
		properties["bvhDepth"] = o.BVHStats().MaxDepth
	}

	if b, ok := obj.(boundedObject); ok {
		box := b.BoundingBox()
		properties["bounds"] = [2][3]float64{vecArray(box.Min), vecArray(box.Max)}
	}
	return name, properties
}

func extractMaterialInfo(mat material.Material) map[string]interface{} {
	return map[string]interface{}{
		"ambient":      hexColor(mat.Ambient),
		"diffuse":      hexColor(mat.Diffuse),
		"specular":     hexColor(mat.Specular),
		"smoothness":   mat.Smoothness,
		"reflectivity": mat.Reflectivity,
	}
}

// inspectPixel casts the primary ray through pixel (x, y) and shades it the way the renderer would
func inspectPixel(req RenderRequest, cam renderer.Camera, tracer *renderer.Raytracer, x, y int) InspectResponse {
	ray := cam.Grid(req.Width, req.Height).Ray(x, y)
	hit := tracer.TraceHit(ray.Origin, ray.Direction, cam.Near, cam.Far, nil)
	color := tracer.TraceColor(ray.Origin, ray.Direction, cam.Near, cam.Far, 0, nil)

	resp := InspectResponse{Hit: hit.Hit, FaceIndex: -1, Color: hexColor(color)}
	if !hit.Hit {
		return resp
	}

	resp.GeometryType, resp.Properties = extractGeometryInfo(hit.Object)
	resp.Point = vecArray(hit.Point)
	resp.Normal = vecArray(hit.Normal)
	resp.Distance = hit.Distance
	resp.FaceIndex = hit.FaceIndex
	resp.Material = extractMaterialInfo(hit.Object.Material())
	return resp
}

// handleInspect reports what pixel (x, y) of a render request sees
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req, err := parseRenderRequest(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	x, errX := strconv.Atoi(query.Get("x"))
	y, errY := strconv.Atoi(query.Get("y"))
	if errX != nil || errY != nil || x < 0 || y < 0 || x >= req.Width || y >= req.Height {
		writeError(w, http.StatusBadRequest, errors.Errorf("pixel (%s, %s) outside %dx%d", query.Get("x"), query.Get("y"), req.Width, req.Height))
		return
	}

	preset, cam, err := s.prepare(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tracer := renderer.NewRaytracer(renderer.RaytracerConfig{
		Mode:       req.Mode,
		Objects:    preset.Scene.Objects(),
		Lights:     preset.Scene.Lights(),
		MaxBounces: req.MaxBounces,
		Far:        cam.Far,
	})
	writeJSON(w, http.StatusOK, inspectPixel(req, cam, tracer, x, y))
}
