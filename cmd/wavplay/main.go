// This tool plays a WAV or AIFF file on the default audio device.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/wavstream"
	"github.com/cwbudde/wavstream/pcm"
)

var (
	flagLoops  = flag.Int("loops", 1, "Number of times to play the file, -1 for forever")
	flagVolume = flag.Int("volume", wavstream.MaxVolume, "Playback volume, 0-128")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("You must pass the path of the file to play")
		os.Exit(1)
	}

	file, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	m, err := wavstream.New(file, pcm.Spec{Format: pcm.S16LE}, false)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	out := m.OutputFormat()

	m.SetVolume(*flagVolume)

	if err := m.Play(*flagLoops); err != nil {
		log.Fatal(err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   out.Rate,
		ChannelCount: out.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		log.Fatal(err)
	}
	<-ready

	player := ctx.NewPlayer(m)
	player.Play()

	for player.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}

	if err := player.Close(); err != nil {
		log.Fatal(err)
	}
}
