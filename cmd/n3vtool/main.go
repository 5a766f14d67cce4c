// n3vtool is a CLI utility for inspecting and converting N3 VMesh files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/n3vedit/internal/export"
	"github.com/Faultbox/n3vedit/pkg/formats"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		return cmdInfo(rest, stdout, stderr)
	case "validate", "check":
		return cmdValidate(rest, stdout, stderr)
	case "export":
		return cmdExport(rest, stdout, stderr)
	case "resave":
		return cmdResave(rest, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `n3vtool - N3 VMesh collision mesh utility

Usage:
  n3vtool <command> [options]

Commands:
  info [-lenient] <file.n3vmesh>                  Show mesh header and bounds
  validate [-lenient] <file.n3vmesh>...           Check files and index ranges
  export [-lenient] <file.n3vmesh> <out.gltf|glb> Export to glTF
  resave [-lenient] <in.n3vmesh> <out.n3vmesh>    Rewrite in canonical form

Examples:
  n3vtool info house01.n3vmesh
  n3vtool validate -lenient maps/*.n3vmesh
  n3vtool export house01.n3vmesh house01.glb`)
}

// parseCommand parses the shared -lenient flag and checks the positional
// argument count.
func parseCommand(name string, args []string, minArgs int, usage string, stderr io.Writer) (formats.VMeshOptions, []string, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	lenient := fs.Bool("lenient", false, "Accept files without an index section")
	if err := fs.Parse(args); err != nil {
		return formats.VMeshOptions{}, nil, false
	}
	if fs.NArg() < minArgs {
		fmt.Fprintf(stderr, "Usage: n3vtool %s\n", usage)
		return formats.VMeshOptions{}, nil, false
	}
	return formats.VMeshOptions{AllowMissingIndices: *lenient}, fs.Args(), true
}

func cmdInfo(args []string, stdout, stderr io.Writer) int {
	opts, rest, ok := parseCommand("info", args, 1, "info [-lenient] <file.n3vmesh>", stderr)
	if !ok {
		return 1
	}

	mesh, err := formats.ParseVMeshFile(rest[0], opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "File:      %s\n", rest[0])
	fmt.Fprintf(stdout, "Name:      %q\n", mesh.Name)
	fmt.Fprintf(stdout, "Vertices:  %d\n", mesh.VertexCount())
	fmt.Fprintf(stdout, "Indices:   %d (%d triangles)\n", mesh.IndexCount(), mesh.IndexCount()/3)
	if mesh.VertexCount() > 0 {
		b := mesh.Bounds
		c := mesh.Center()
		fmt.Fprintf(stdout, "Min:       (%.3f, %.3f, %.3f)\n", b.Min.X, b.Min.Y, b.Min.Z)
		fmt.Fprintf(stdout, "Max:       (%.3f, %.3f, %.3f)\n", b.Max.X, b.Max.Y, b.Max.Z)
		fmt.Fprintf(stdout, "Center:    (%.3f, %.3f, %.3f)\n", c.X, c.Y, c.Z)
		fmt.Fprintf(stdout, "Radius:    %.3f\n", mesh.Radius())
	}
	return 0
}

func cmdValidate(args []string, stdout, stderr io.Writer) int {
	opts, rest, ok := parseCommand("validate", args, 1, "validate [-lenient] <file.n3vmesh>...", stderr)
	if !ok {
		return 1
	}

	failed := 0
	for _, path := range rest {
		mesh, err := formats.ParseVMeshFile(path, opts)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(stdout, "FAIL  %s: %v\n", path, err)
		case !mesh.IndicesInRange():
			failed++
			fmt.Fprintf(stdout, "FAIL  %s: indices exceed %d vertices\n", path, mesh.VertexCount())
		case mesh.IndexCount()%3 != 0:
			fmt.Fprintf(stdout, "WARN  %s: %d indices is not a triangle list\n", path, mesh.IndexCount())
		default:
			fmt.Fprintf(stdout, "OK    %s\n", path)
		}
	}

	fmt.Fprintf(stdout, "\n%d checked, %d failed\n", len(rest), failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func cmdExport(args []string, stdout, stderr io.Writer) int {
	opts, rest, ok := parseCommand("export", args, 2, "export [-lenient] <file.n3vmesh> <out.gltf|out.glb>", stderr)
	if !ok {
		return 1
	}

	in, out := rest[0], rest[1]
	mesh, err := formats.ParseVMeshFile(in, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	name := filepath.Base(in)
	name = name[:len(name)-len(filepath.Ext(name))]
	if err := export.WriteFile(out, mesh, export.Options{Name: name}); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Exported %s -> %s\n", in, out)
	return 0
}

func cmdResave(args []string, stdout, stderr io.Writer) int {
	opts, rest, ok := parseCommand("resave", args, 2, "resave [-lenient] <in.n3vmesh> <out.n3vmesh>", stderr)
	if !ok {
		return 1
	}

	in, out := rest[0], rest[1]
	mesh, err := formats.ParseVMeshFile(in, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := formats.SaveVMesh(out, mesh, filepath.Base(out)); err != nil {
		if errors.Is(err, formats.ErrVMeshEmpty) {
			fmt.Fprintln(stderr, "Error: mesh has no vertices, nothing to save")
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	fmt.Fprintf(stdout, "Saved %s (%d vertices, %d indices)\n", out, mesh.VertexCount(), mesh.IndexCount())
	return 0
}
