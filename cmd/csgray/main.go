// Command csgray shoots a grid of rays through a scene script and reports
// what every solid was hit by.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chazu/csgray/pkg/config"
	"github.com/chazu/csgray/pkg/scene"
	plt "github.com/phil-mansfield/pyplot"
)

func main() {
	var (
		configFile, scriptFile, stlFile string
		raysFile, plotFile              string
		exampleConfig, describe, dump   bool
	)

	flag.StringVar(&configFile, "config", "", "Run file with [Tolerance], [Shot], [Grid] and [Output] sections.")
	flag.StringVar(&scriptFile, "script", "", "Scene script to evaluate.")
	flag.StringVar(&stlFile, "stl", "", "Write the tessellated scene to this STL file. Overrides [Output] STL.")
	flag.StringVar(&raysFile, "rays", "", "Shoot the rays in this file instead of the grid. Columns: ox oy oz dx dy dz.")
	flag.StringVar(&plotFile, "plot", "", "Save a wireframe plot of the scene, viewed along the grid direction, to this image file.")
	flag.BoolVar(&exampleConfig, "example-config", false, "Print an example run file to stdout and exit.")
	flag.BoolVar(&dump, "print", false, "Print every prepared solid's faces or facets after shooting.")
	flag.BoolVar(&describe, "describe", false, "List every solid's vertices before shooting.")
	flag.Parse()

	if exampleConfig {
		fmt.Println(config.Example)
		return
	}
	if scriptFile == "" {
		log.Fatal("Must supply a -script file.")
	}

	con := config.Default()
	if configFile != "" {
		var err error
		con, err = config.ReadFile(configFile)
		if err != nil {
			log.Fatal(err.Error())
		}
	}
	if stlFile != "" {
		con.Output.STL = stlFile
	}

	source, err := os.ReadFile(scriptFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	app := NewApp(con, log.Default())
	if raysFile != "" {
		rays, err := scene.ReadRays(raysFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		app.UseRays(rays)
	}
	if dump {
		app.DumpTo(os.Stdout)
	}
	report, err := app.Run(context.Background(), string(source))
	if err != nil {
		log.Fatal(err.Error())
	}

	if describe && report.Scene != nil {
		for _, e := range report.Scene.Entries {
			text, err := e.Describe(true)
			if err != nil {
				log.Printf("%s: %v", e.Name, err)
				continue
			}
			fmt.Printf("%s (%s): %s", e.Name, e.Kind, text)
		}
	}

	report.Print(os.Stdout)
	if plotFile != "" && len(report.Wireframes) > 0 {
		plotWireframes(plotFile, report.Wireframes, con.RayGrid())
		plt.Execute()
	}
	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}
