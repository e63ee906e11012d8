package loaders

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// createTestPLY builds a binary unit square: four vertices and two triangles,
// with an extra per-vertex normal and a per-face flag to be skipped
func createTestPLY(t *testing.T, order binary.ByteOrder, format string) []byte {
	t.Helper()
	var buf bytes.Buffer

	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment unit square\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	buf.WriteString("property float nz\n")
	buf.WriteString("element face 2\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("property uchar flags\n")
	buf.WriteString("end_header\n")

	vertices := [][4]float32{
		{0, 0, 0, 1},
		{1, 0, 0, 1},
		{1, 1, 0, 1},
		{0, 1, 0, 1},
	}
	for _, v := range vertices {
		if err := binary.Write(&buf, order, v); err != nil {
			t.Fatal(err)
		}
	}

	faces := [][3]int32{{0, 1, 2}, {0, 2, 3}}
	for _, f := range faces {
		buf.WriteByte(3)
		if err := binary.Write(&buf, order, f); err != nil {
			t.Fatal(err)
		}
		buf.WriteByte(7)
	}
	return buf.Bytes()
}

func TestReadPLY_Binary(t *testing.T) {
	tests := []struct {
		format string
		order  binary.ByteOrder
	}{
		{"binary_little_endian", binary.LittleEndian},
		{"binary_big_endian", binary.BigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			mesh, err := ReadPLY(bytes.NewReader(createTestPLY(t, tt.order, tt.format)))
			if err != nil {
				t.Fatalf("ReadPLY: %v", err)
			}

			wantVertices := []core.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}
			if diff := cmp.Diff(wantVertices, mesh.Vertices()); diff != "" {
				t.Errorf("vertices mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([][3]int{{0, 1, 2}, {0, 2, 3}}, mesh.Faces()); diff != "" {
				t.Errorf("faces mismatch (-want +got):\n%s", diff)
			}
			for i, n := range mesh.Normals() {
				if n != (core.Vec3{Z: 1}) {
					t.Errorf("normal %d = %v, want +Z", i, n)
				}
			}
		})
	}
}

func TestReadPLY_ASCIIPolygon(t *testing.T) {
	data := `ply
format ascii 1.0
element vertex 5
property double x
property double y
property double z
element edge 1
property int vertex1
property int vertex2
element face 1
property list uchar uint vertex_index
end_header
0 0 0
1 0 0
1.5 1 0
0.5 2 0
-0.5 1 0
0 1
5 0 1 2 3 4
`
	mesh, err := ReadPLY(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadPLY: %v", err)
	}
	if len(mesh.Vertices()) != 5 {
		t.Errorf("vertices = %d, want 5", len(mesh.Vertices()))
	}
	if diff := cmp.Diff([][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}, mesh.Faces()); diff != "" {
		t.Errorf("fan triangulation mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPLY_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing magic", "format ascii 1.0\nend_header\n"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n"},
		{"unterminated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"unknown type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n"},
		{"no xyz", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float w\nend_header\n1\n"},
		{"truncated body", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"bad index", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 9\n"},
		{"two-vertex face", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n2 0 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPLY(strings.NewReader(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadPLY_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.ply")
	if err := os.WriteFile(path, createTestPLY(t, binary.LittleEndian, "binary_little_endian"), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if mesh.NumFaces() != 2 {
		t.Errorf("faces = %d, want 2", mesh.NumFaces())
	}
}

func TestLoadPLY_NonExistentFile(t *testing.T) {
	if _, err := LoadPLY("nonexistent.ply"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParsePLYHeader(t *testing.T) {
	header, err := parsePLYHeader(bufio.NewReader(strings.NewReader(
		"ply\nformat ascii 1.0\nelement vertex 8\nproperty float x\nelement face 6\nproperty list uchar int vertex_indices\nend_header\n")))
	if err != nil {
		t.Fatalf("parsePLYHeader: %v", err)
	}

	want := &plyHeader{
		Format:  "ascii",
		Version: "1.0",
		Elements: []plyElement{
			{Name: "vertex", Count: 8, Properties: []plyProperty{{Name: "x", Type: "float"}}},
			{Name: "face", Count: 6, Properties: []plyProperty{{Name: "vertex_indices", Type: "int", IsList: true, CountType: "uchar"}}},
		},
	}
	if diff := cmp.Diff(want, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTypeSize(t *testing.T) {
	tests := []struct {
		dataType string
		expected int
	}{
		{"float", 4},
		{"float32", 4},
		{"double", 8},
		{"int", 4},
		{"uint", 4},
		{"short", 2},
		{"ushort", 2},
		{"char", 1},
		{"uchar", 1},
		{"unknown", 0},
	}

	for _, tt := range tests {
		if got := getTypeSize(tt.dataType); got != tt.expected {
			t.Errorf("getTypeSize(%s) = %d, want %d", tt.dataType, got, tt.expected)
		}
	}
}

func TestLoadMesh_UnknownExtension(t *testing.T) {
	_, err := LoadMesh("model.stl")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
