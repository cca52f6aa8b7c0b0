// Command kittentts-stageprof profiles the synthesis pipeline stage by
// stage, labeling prepare, generate and encode work for pprof.
package main

import "github.com/example/go-kitten-tts/internal/bench/stageprof"

func main() {
	stageprof.Main()
}
