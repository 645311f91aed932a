package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/gridbeat/gridbeat"
	"github.com/gridbeat/gridbeat/engine"
	"github.com/gridbeat/gridbeat/oto"
	"github.com/gridbeat/gridbeat/sample"
	"github.com/gridbeat/gridbeat/version"
)

func main() {
	play := flag.Bool("p", false, "Play the input projects on loop (default behaviour when no other output is defined). Stop with interrupt.")
	rawOut := flag.Bool("r", false, "Render one loop of the project to a .raw file, stereo float32 buffer by default.")
	wavOut := flag.Bool("w", false, "Render one loop of the project to a .wav file, stereo float32 buffer by default.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	directory := flag.String("o", "", "Directory where to output all files. Created if needed; defaults to the working directory.")
	assetDir := flag.String("assets", "", "Directory to load sample assets from; every track's assetId is resolved against it as <assetId>.wav or <assetId>.mp3.")
	versionFlag := flag.Bool("v", false, "Print version.")
	help := flag.Bool("h", false, "Show help.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut {
		*play = true
	}
	retval := 0
	for _, filename := range flag.Args() {
		if err := process(filename, *play, *rawOut, *wavOut, *pcm, *directory, *assetDir); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", filename, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func process(filename string, play, rawOut, wavOut, pcm bool, directory, assetDir string) error {
	inputBytes, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read file %v: %w", filename, err)
	}
	project, err := gridbeat.ParseProject(inputBytes)
	if err != nil {
		return err
	}
	cache := sample.NewCache()
	if err := loadAssets(cache, project, assetDir, filepath.Dir(filename)); err != nil {
		return err
	}
	if rawOut || wavOut {
		buffer, err := engine.RenderSong(project, cache)
		if err != nil {
			return err
		}
		if rawOut {
			raw, err := gridbeat.Raw(buffer, pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %w", err)
			}
			if err := output(filename, directory, ".raw", raw); err != nil {
				return err
			}
		}
		if wavOut {
			wav, err := gridbeat.Wav(buffer, pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %w", err)
			}
			if err := output(filename, directory, ".wav", wav); err != nil {
				return err
			}
		}
	}
	if play {
		return playProject(project, cache)
	}
	return nil
}

// playProject loops the project on the audio device until interrupted.
func playProject(project gridbeat.Project, cache *sample.Cache) error {
	context, err := oto.NewContext()
	if err != nil {
		return fmt.Errorf("could not acquire audio context: %w", err)
	}
	broker := engine.NewBroker()
	player := engine.NewPlayer(broker, cache)
	go player.Run()
	broker.ToEngine <- engine.ProjectMsg{Project: project}
	broker.ToEngine <- engine.IsPlayingMsg{Playing: true}
	device := context.Play(player)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt

	broker.CloseEngine <- struct{}{}
	engine.TimeoutReceive(broker.FinishedEngine, 3*time.Second)
	if err := device.Close(); err != nil {
		return err
	}
	return context.Suspend()
}

// loadAssets decodes every sample asset the project references, looking for
// <assetId>.wav then <assetId>.mp3 under the asset directory (or next to the
// project file when no directory is given).
func loadAssets(cache *sample.Cache, project gridbeat.Project, assetDir, projectDir string) error {
	dir := assetDir
	if dir == "" {
		dir = projectDir
	}
	for _, t := range project.Tracks {
		if t.AssetID == "" || cache.Ready(t.AssetID) {
			continue
		}
		var data []byte
		var err error
		for _, ext := range []string{".wav", ".mp3"} {
			data, err = os.ReadFile(filepath.Join(dir, t.AssetID+ext))
			if err == nil {
				break
			}
		}
		if err != nil {
			return fmt.Errorf("could not read asset %v for track %v: %w", t.AssetID, t.Name, err)
		}
		if err := cache.Load(t.AssetID, data); err != nil {
			return fmt.Errorf("could not decode asset %v: %w", t.AssetID, err)
		}
	}
	return nil
}

func output(filename, directory, extension string, contents []byte) error {
	_, name := filepath.Split(filename)
	dir := directory
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory, specify the output directory explicitly: %w", err)
		}
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %w", dir, err)
	}
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %w", f, err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Gridbeat command line utility for playing and rendering .yml/.json project files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
