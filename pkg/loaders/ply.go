package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// ErrPLYFormat is returned for malformed or unsupported PLY input
var ErrPLYFormat = errors.New("invalid PLY data")

// plyElement is one "element" block of the header with its properties in file order
type plyElement struct {
	Name       string
	Count      int
	Properties []plyProperty
}

// plyProperty represents a property definition in the PLY header
type plyProperty struct {
	Name      string
	Type      string
	IsList    bool
	CountType string // For list properties, the type of the count
}

// plyHeader represents the parsed header information from a PLY file
type plyHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string
	Elements []plyElement
}

// LoadPLY loads a triangle or polygon mesh from a PLY file
func LoadPLY(filename string) (*geometry.Mesh, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open PLY file")
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}

	slog.Debug("loaded PLY mesh",
		"file", filename,
		"vertices", len(mesh.Vertices()),
		"faces", mesh.NumFaces(),
		"elapsed", time.Since(startTime))
	return mesh, nil
}

// ReadPLY parses an ascii or binary PLY stream. Polygons are fan-triangulated;
// elements other than vertex and face are skipped.
func ReadPLY(r io.Reader) (*geometry.Mesh, error) {
	reader := bufio.NewReader(r)
	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "parse PLY header")
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(reader)
		scanner.Split(bufio.ScanWords)
		values = &plyASCIIReader{scanner: scanner}
	case "binary_little_endian":
		values = &plyBinaryReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &plyBinaryReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, errors.Wrapf(ErrPLYFormat, "unsupported format %q", header.Format)
	}

	mesh := geometry.NewMesh()
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readPLYVertices(values, element, mesh)
		case "face":
			err = readPLYFaces(values, element, mesh)
		default:
			err = skipPLYElement(values, element)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "element %s", element.Name)
		}
	}
	return mesh, nil
}

// parsePLYHeader reads lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}
	lineNum := 0
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			return nil, errors.Wrapf(ErrPLYFormat, "header ended before end_header at line %d", lineNum+1)
		}
		lineNum++
		line := strings.TrimSpace(raw)

		if lineNum == 1 {
			if line != "ply" {
				return nil, errors.Wrap(ErrPLYFormat, "missing ply magic")
			}
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, errors.Wrapf(ErrPLYFormat, "line %d: bad format line", lineNum)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, errors.Wrapf(ErrPLYFormat, "line %d: bad element line", lineNum)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Wrapf(ErrPLYFormat, "line %d: invalid element count %q", lineNum, parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, errors.Wrapf(ErrPLYFormat, "line %d: property before element", lineNum)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			current := &header.Elements[len(header.Elements)-1]
			current.Properties = append(current.Properties, prop)
		default:
			return nil, errors.Wrapf(ErrPLYFormat, "line %d: unknown keyword %q", lineNum, parts[0])
		}

		if err == io.EOF {
			return nil, errors.Wrap(ErrPLYFormat, "header ended before end_header")
		}
	}

	if header.Format == "" {
		return nil, errors.Wrap(ErrPLYFormat, "missing format line")
	}
	return header, nil
}

// parsePLYProperty parses the fields after "property"
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) < 2 {
		return plyProperty{}, errors.Wrap(ErrPLYFormat, "invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, errors.Wrap(ErrPLYFormat, "invalid list property definition")
		}
		if getTypeSize(parts[1]) == 0 || getTypeSize(parts[2]) == 0 {
			return plyProperty{}, errors.Wrapf(ErrPLYFormat, "unknown list types %s %s", parts[1], parts[2])
		}
		return plyProperty{IsList: true, CountType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}

	if getTypeSize(parts[0]) == 0 {
		return plyProperty{}, errors.Wrapf(ErrPLYFormat, "unknown type %s", parts[0])
	}
	return plyProperty{Type: parts[0], Name: parts[1]}, nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}

// plyValueReader yields the next scalar of the body regardless of encoding
type plyValueReader interface {
	next(dataType string) (float64, error)
}

type plyASCIIReader struct {
	scanner *bufio.Scanner
}

func (r *plyASCIIReader) next(string) (float64, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	value, err := strconv.ParseFloat(r.scanner.Text(), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrPLYFormat, "bad value %q", r.scanner.Text())
	}
	return value, nil
}

type plyBinaryReader struct {
	reader io.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (r *plyBinaryReader) next(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	b := r.buf[:size]
	if _, err := io.ReadFull(r.reader, b); err != nil {
		return 0, err
	}

	switch dataType {
	case "float", "float32":
		return float64(math.Float32frombits(r.order.Uint32(b))), nil
	case "double", "float64":
		return math.Float64frombits(r.order.Uint64(b)), nil
	case "int", "int32":
		return float64(int32(r.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(r.order.Uint32(b)), nil
	case "short", "int16":
		return float64(int16(r.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(r.order.Uint16(b)), nil
	case "char", "int8":
		return float64(int8(b[0])), nil
	default:
		return float64(b[0]), nil
	}
}

// readPLYList reads a list property into dst
func readPLYList(values plyValueReader, prop plyProperty, dst []float64) ([]float64, error) {
	count, err := values.next(prop.CountType)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.Wrapf(ErrPLYFormat, "negative list length %v", count)
	}

	dst = dst[:0]
	for i := 0; i < int(count); i++ {
		value, err := values.next(prop.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, value)
	}
	return dst, nil
}

func readPLYVertices(values plyValueReader, element plyElement, mesh *geometry.Mesh) error {
	xyz := [3]int{-1, -1, -1}
	for i, prop := range element.Properties {
		switch prop.Name {
		case "x":
			xyz[0] = i
		case "y":
			xyz[1] = i
		case "z":
			xyz[2] = i
		}
	}
	if xyz[0] < 0 || xyz[1] < 0 || xyz[2] < 0 {
		return errors.Wrap(ErrPLYFormat, "vertex element lacks x, y or z")
	}

	row := make([]float64, len(element.Properties))
	var list []float64
	for v := 0; v < element.Count; v++ {
		for i, prop := range element.Properties {
			if prop.IsList {
				var err error
				if list, err = readPLYList(values, prop, list); err != nil {
					return errors.Wrapf(err, "vertex %d", v)
				}
				continue
			}
			value, err := values.next(prop.Type)
			if err != nil {
				return errors.Wrapf(err, "vertex %d", v)
			}
			row[i] = value
		}
		mesh.AddVertex(core.NewVec3(row[xyz[0]], row[xyz[1]], row[xyz[2]]))
	}
	return nil
}

func readPLYFaces(values plyValueReader, element plyElement, mesh *geometry.Mesh) error {
	var indices []float64
	var scratch []float64
	for f := 0; f < element.Count; f++ {
		found := false
		for _, prop := range element.Properties {
			if !prop.IsList {
				if _, err := values.next(prop.Type); err != nil {
					return errors.Wrapf(err, "face %d", f)
				}
				continue
			}

			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				var err error
				if scratch, err = readPLYList(values, prop, scratch); err != nil {
					return errors.Wrapf(err, "face %d", f)
				}
				continue
			}

			var err error
			if indices, err = readPLYList(values, prop, indices); err != nil {
				return errors.Wrapf(err, "face %d", f)
			}
			found = true
		}
		if !found {
			return errors.Wrap(ErrPLYFormat, "face element lacks vertex_indices")
		}
		if len(indices) < 3 {
			return errors.Wrapf(ErrPLYFormat, "face %d has %d vertices", f, len(indices))
		}

		for k := 1; k+1 < len(indices); k++ {
			if _, err := mesh.AddFace(int(indices[0]), int(indices[k]), int(indices[k+1])); err != nil {
				return errors.Wrapf(err, "face %d", f)
			}
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, element plyElement) error {
	var scratch []float64
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			var err error
			if prop.IsList {
				scratch, err = readPLYList(values, prop, scratch)
			} else {
				_, err = values.next(prop.Type)
			}
			if err != nil {
				return errors.Wrapf(err, "item %d", i)
			}
		}
	}
	return nil
}
