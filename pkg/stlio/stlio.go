// Package stlio reads and writes STL files as import and export
// endpoints for the model store. Imported geometry carries no analytic
// surfaces, so handles produced here are mesh-only.
package stlio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/polarbearcad/polarbear/pkg/brep"
	"github.com/polarbearcad/polarbear/pkg/geometry"
	"github.com/polarbearcad/polarbear/pkg/mesh"
)

// Load reads an STL file and returns a mesh-only geometry handle.
// ASCII and binary formats are detected automatically; anything else
// fails with ErrUnsupportedFormat.
func Load(filename string) (*brep.Handle, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".stl" {
		return nil, fmt.Errorf("%w: unrecognized extension %q", brep.ErrUnsupportedFormat, ext)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	header := make([]byte, 5)
	n, err := file.Read(header)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", brep.ErrUnsupportedFormat, err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	var name string
	var triangles []geometry.Triangle
	if n >= 5 && string(header) == "solid" {
		name, triangles, err = parseASCII(file)
	} else {
		name, triangles, err = parseBinary(file)
	}
	if err != nil {
		return nil, err
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: no triangles in %s", brep.ErrUnsupportedFormat, filename)
	}

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	m := mesh.FromTriangles(triangles)
	m.ComputeNormals()
	return brep.NewMeshHandle(name, m), nil
}

func parseASCII(reader io.Reader) (string, []geometry.Triangle, error) {
	scanner := bufio.NewScanner(reader)

	var name string
	var triangles []geometry.Triangle
	var vertices []geometry.Vector3

	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) < 4 {
				return "", nil, fmt.Errorf("%w: malformed vertex line", brep.ErrUnsupportedFormat)
			}
			x, errX := strconv.ParseFloat(fields[1], 64)
			y, errY := strconv.ParseFloat(fields[2], 64)
			z, errZ := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil || errZ != nil {
				return "", nil, fmt.Errorf("%w: malformed vertex coordinates", brep.ErrUnsupportedFormat)
			}
			vertices = append(vertices, geometry.NewVector3(x, y, z))

		case "endfacet":
			if len(vertices) != 3 {
				return "", nil, fmt.Errorf("%w: facet with %d vertices", brep.ErrUnsupportedFormat, len(vertices))
			}
			tri := geometry.NewTriangle(geometry.Vector3{}, vertices[0], vertices[1], vertices[2])
			tri.Normal = tri.CalculateNormal()
			triangles = append(triangles, tri)
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return name, triangles, nil
}

func parseBinary(reader io.Reader) (string, []geometry.Triangle, error) {
	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return "", nil, fmt.Errorf("%w: short binary header: %v", brep.ErrUnsupportedFormat, err)
	}
	name := string(bytes.TrimRight(header, "\x00 "))

	var count uint32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return "", nil, fmt.Errorf("%w: missing triangle count: %v", brep.ErrUnsupportedFormat, err)
	}

	triangles := make([]geometry.Triangle, 0, count)
	for i := uint32(0); i < count; i++ {
		// 12 floats for normal and vertices plus the attribute count.
		var raw [12]float32
		var attr uint16
		if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
			return "", nil, fmt.Errorf("%w: truncated triangle %d: %v", brep.ErrUnsupportedFormat, i, err)
		}
		if err := binary.Read(reader, binary.LittleEndian, &attr); err != nil {
			return "", nil, fmt.Errorf("%w: truncated triangle %d: %v", brep.ErrUnsupportedFormat, i, err)
		}

		tri := geometry.NewTriangle(
			geometry.NewVector3(float64(raw[0]), float64(raw[1]), float64(raw[2])),
			geometry.NewVector3(float64(raw[3]), float64(raw[4]), float64(raw[5])),
			geometry.NewVector3(float64(raw[6]), float64(raw[7]), float64(raw[8])),
			geometry.NewVector3(float64(raw[9]), float64(raw[10]), float64(raw[11])),
		)
		triangles = append(triangles, tri)
	}

	return name, triangles, nil
}

// Save writes a mesh to an STL file. Meshes without faces cannot be
// exported.
func Save(filename string, m *mesh.Mesh, name string, asBinary bool) error {
	if m == nil || m.FaceCount() == 0 {
		return fmt.Errorf("%w: mesh has no faces", brep.ErrNotExportable)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if asBinary {
		err = writeBinary(w, m, name)
	} else {
		err = writeASCII(w, m, name)
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

func writeASCII(w io.Writer, m *mesh.Mesh, name string) error {
	if _, err := fmt.Fprintf(w, "solid %s\n", name); err != nil {
		return fmt.Errorf("failed to write STL: %w", err)
	}
	for i := 0; i < m.FaceCount(); i++ {
		tri := m.Triangle(i)
		fmt.Fprintf(w, "  facet normal %g %g %g\n", tri.Normal.X, tri.Normal.Y, tri.Normal.Z)
		fmt.Fprintf(w, "    outer loop\n")
		fmt.Fprintf(w, "      vertex %g %g %g\n", tri.V1.X, tri.V1.Y, tri.V1.Z)
		fmt.Fprintf(w, "      vertex %g %g %g\n", tri.V2.X, tri.V2.Y, tri.V2.Z)
		fmt.Fprintf(w, "      vertex %g %g %g\n", tri.V3.X, tri.V3.Y, tri.V3.Z)
		fmt.Fprintf(w, "    endloop\n")
		fmt.Fprintf(w, "  endfacet\n")
	}
	if _, err := fmt.Fprintf(w, "endsolid %s\n", name); err != nil {
		return fmt.Errorf("failed to write STL: %w", err)
	}
	return nil
}

func writeBinary(w io.Writer, m *mesh.Mesh, name string) error {
	header := make([]byte, 80)
	copy(header, name)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write STL header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(m.FaceCount())); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	for i := 0; i < m.FaceCount(); i++ {
		tri := m.Triangle(i)
		raw := [12]float32{
			float32(tri.Normal.X), float32(tri.Normal.Y), float32(tri.Normal.Z),
			float32(tri.V1.X), float32(tri.V1.Y), float32(tri.V1.Z),
			float32(tri.V2.X), float32(tri.V2.Y), float32(tri.V2.Z),
			float32(tri.V3.X), float32(tri.V3.Y), float32(tri.V3.Z),
		}
		if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return nil
}
