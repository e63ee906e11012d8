package loaders

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// ErrOBJFormat is returned for malformed OBJ records
var ErrOBJFormat = errors.New("invalid OBJ data")

// LoadOBJ loads the geometry of a Wavefront OBJ file
func LoadOBJ(filename string) (*geometry.Mesh, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open OBJ file")
	}
	defer file.Close()

	mesh, err := ReadOBJ(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}

	slog.Debug("loaded OBJ mesh",
		"file", filename,
		"vertices", len(mesh.Vertices()),
		"faces", mesh.NumFaces(),
		"elapsed", time.Since(startTime))
	return mesh, nil
}

// ReadOBJ parses "v" and "f" records. Face corners may be written as a, a/b,
// a//c or a/b/c; only the position index is used. Negative indices count back
// from the latest vertex. Polygons are fan-triangulated and every other record
// is ignored.
func ReadOBJ(r io.Reader) (*geometry.Mesh, error) {
	mesh := geometry.NewMesh()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	var corners []int

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Wrapf(ErrOBJFormat, "line %d: vertex needs three coordinates", lineNum)
			}
			var xyz [3]float64
			for i := range xyz {
				value, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, errors.Wrapf(ErrOBJFormat, "line %d: bad coordinate %q", lineNum, fields[i+1])
				}
				xyz[i] = value
			}
			mesh.AddVertex(core.NewVec3(xyz[0], xyz[1], xyz[2]))

		case "f":
			if len(fields) < 4 {
				return nil, errors.Wrapf(ErrOBJFormat, "line %d: face needs at least three corners", lineNum)
			}
			corners = corners[:0]
			for _, field := range fields[1:] {
				index, err := parseOBJIndex(field, len(mesh.Vertices()))
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", lineNum)
				}
				corners = append(corners, index)
			}
			for k := 1; k+1 < len(corners); k++ {
				if _, err := mesh.AddFace(corners[0], corners[k], corners[k+1]); err != nil {
					return nil, errors.Wrapf(err, "line %d", lineNum)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "line %d", lineNum)
	}
	return mesh, nil
}

// parseOBJIndex converts the position part of a face corner to a zero-based index
func parseOBJIndex(field string, numVertices int) (int, error) {
	position := field
	if i := strings.IndexByte(field, '/'); i >= 0 {
		position = field[:i]
	}

	index, err := strconv.Atoi(position)
	if err != nil || index == 0 {
		return 0, errors.Wrapf(ErrOBJFormat, "bad face corner %q", field)
	}
	if index < 0 {
		return numVertices + index, nil
	}
	return index - 1, nil
}
