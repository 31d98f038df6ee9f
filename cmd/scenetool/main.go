// scenetool is a CLI utility for inspecting YAML scene descriptions.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/nevk-scene/internal/config"
	"github.com/Faultbox/nevk-scene/internal/engine/gpubuf"
	"github.com/Faultbox/nevk-scene/internal/engine/scene"
	"github.com/Faultbox/nevk-scene/internal/logger"
	"github.com/Faultbox/nevk-scene/internal/scenefile"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "order":
		err = cmdOrder(args)
	case "frames":
		err = cmdFrames(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - scene description utility

Usage:
  scenetool <command> [options] <scene.yaml>

Commands:
  info <scene.yaml>                Show storage counts and buffer sizes
  order [-cam x,y,z] <scene.yaml>  Show opaque and back-to-front transparent lists
  frames [-n N] <scene.yaml>       Animate N frames, printing dirty sets and uploads

Common options:
  -config <file>   Config file (defaults < file)
  -v               Debug logging

Examples:
  scenetool info scenes/demo.yaml
  scenetool order -cam 0,2,10 scenes/demo.yaml
  scenetool frames -n 5 scenes/demo.yaml`)
}

// session is a loaded scene shared by all commands.
type session struct {
	desc  *scenefile.Description
	table *scenefile.Table
	scene *scene.Scene
}

// commonFlags registers the options every command accepts.
func commonFlags(fs *flag.FlagSet) (configPath *string, verbose *bool) {
	configPath = fs.String("config", "", "Config file")
	verbose = fs.Bool("v", false, "Debug logging")
	return configPath, verbose
}

func openScene(fs *flag.FlagSet, configPath string, verbose bool) (*session, error) {
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("usage: scenetool %s [options] <scene.yaml>", fs.Name())
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		return nil, err
	}

	desc, err := scenefile.Load(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	s := scene.New(cfg.ToScene())
	table, err := scenefile.Build(desc, s)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", fs.Arg(0), err)
	}
	return &session{desc: desc, table: table, scene: s}, nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath, verbose := commonFlags(fs)
	fs.Parse(args)

	ss, err := openScene(fs, *configPath, *verbose)
	if err != nil {
		return err
	}
	s := ss.scene
	st := s.Stats()

	name := ss.desc.Name
	if name == "" {
		name = fs.Arg(0)
	}
	fmt.Printf("Scene:     %s\n", name)
	fmt.Printf("Vertices:  %d\n", st.Vertices)
	fmt.Printf("Indices:   %d\n", st.Indices)
	fmt.Printf("Meshes:    %d\n", st.Meshes)
	fmt.Printf("Materials: %d\n", st.Materials)
	fmt.Printf("Instances: %d\n", st.Instances)
	fmt.Println()

	// A first sync uploads everything, which is the resident size.
	_, sync := gpubuf.NewMirror(discard{}).Sync(s)
	fmt.Printf("GPU upload: %.2f KB in %d writes\n", float64(sync.Bytes)/1024, sync.Writes)
	fmt.Println()

	fmt.Println("Instances:")
	for _, n := range ss.table.Order {
		id := ss.table.Instances[n]
		in, err := s.Instance(id)
		if err != nil {
			return err
		}
		mat, err := s.Material(in.MaterialID)
		if err != nil {
			return err
		}
		pass := "opaque"
		if mat.IsTransparent() {
			pass = "transparent"
		}
		fmt.Printf("  %-4d %-16s mesh %-3d material %-3d %-11s %s\n",
			id, n, in.MeshID, in.MaterialID, pass, mat.Illum)
	}
	return nil
}

func cmdOrder(args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	configPath, verbose := commonFlags(fs)
	camFlag := fs.String("cam", "", "Camera position x,y,z (default: scene camera)")
	fs.Parse(args)

	ss, err := openScene(fs, *configPath, *verbose)
	if err != nil {
		return err
	}

	cam := ss.scene.Camera().Position
	if *camFlag != "" {
		if cam, err = parseVec3(*camFlag); err != nil {
			return fmt.Errorf("-cam: %w", err)
		}
	}

	names := make(map[scene.InstanceID]string, len(ss.table.Instances))
	for n, id := range ss.table.Instances {
		names[id] = n
	}

	fmt.Printf("Camera: %.2f, %.2f, %.2f\n", cam[0], cam[1], cam[2])
	fmt.Println("Opaque:")
	for _, id := range ss.scene.OpaqueInstancesToRender(cam) {
		fmt.Printf("  %-4d %s\n", id, names[id])
	}
	fmt.Println("Transparent (back to front):")
	for _, id := range ss.scene.TransparentInstancesToRender(cam) {
		in, _ := ss.scene.Instance(id)
		dist := in.WorldMassCenter().Sub(cam).Len()
		fmt.Printf("  %-4d %-16s %.3f\n", id, names[id], dist)
	}
	return nil
}

func cmdFrames(args []string) error {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	configPath, verbose := commonFlags(fs)
	n := fs.Int("n", 3, "Number of frames")
	fs.Parse(args)

	ss, err := openScene(fs, *configPath, *verbose)
	if err != nil {
		return err
	}
	if !ss.desc.Animated() {
		fmt.Println("Note: no instance has a spin; dirty sets will be empty")
	}

	s := ss.scene
	mirror := gpubuf.NewMirror(discard{})
	plan, st := mirror.Sync(s)
	fmt.Printf("initial   %s (%d bytes)\n", describePlan(plan), st.Bytes)

	for i := 0; i < *n; i++ {
		if err := s.BeginFrame(); err != nil {
			return err
		}
		if err := scenefile.Animate(ss.desc, ss.table, s, s.FrameNumber()); err != nil {
			return err
		}
		if err := s.EndFrame(); err != nil {
			return err
		}
		plan, st := mirror.Sync(s)
		fmt.Printf("frame %-3d dirty %v, %s (%d bytes)\n", s.FrameNumber(), s.DirtyInstances(), describePlan(plan), st.Bytes)
	}

	total := mirror.Total()
	fmt.Printf("total     %d bytes in %d writes, %d reallocations\n", total.Bytes, total.Writes, total.Reallocs)
	return nil
}

func describePlan(p gpubuf.Plan) string {
	parts := []string{
		"vertices " + p.Vertices.Kind.String(),
		"indices " + p.Indices.Kind.String(),
		fmt.Sprintf("instances %s %v", p.Instances.Kind, p.Instances.Ranges),
		"materials " + p.Materials.Kind.String(),
	}
	return strings.Join(parts, ", ")
}

func parseVec3(s string) (mgl32.Vec3, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mgl32.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(x)
	}
	return v, nil
}
