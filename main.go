package main

import (
	"github.com/faiface/pixel/pixelgl"

	"vip8/cmd"
)

func main() {
	// pixelgl needs the main thread; the CLI runs inside its loop
	pixelgl.Run(cmd.Execute)
}
