// This tool decodes a WAV (or AIFF) file and writes it back out as a 16-bit
// AIFF file in the same folder as the source.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"

	"github.com/cwbudde/wavstream"
	"github.com/cwbudde/wavstream/pcm"
)

var flagPath = flag.String("path", "", "The path of the file to convert to aiff")

func main() {
	flag.Parse()

	if *flagPath == "" {
		fmt.Println("You must set the -path flag")
		os.Exit(1)
	}

	file, err := os.Open(*flagPath)
	if err != nil {
		fmt.Println("Invalid path", *flagPath, err)
		os.Exit(1)
	}
	defer file.Close()

	m, err := wavstream.New(file, pcm.Spec{Format: pcm.S16LE}, false)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if err := m.Play(1); err != nil {
		log.Fatal(err)
	}

	out := m.OutputFormat()

	sourcePath := *flagPath
	outPath := sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".aif"

	outFile, err := os.Create(outPath)
	if err != nil {
		log.Fatal("Failed to create ", outPath, ": ", err)
	}
	defer outFile.Close()

	encoder := aiff.NewEncoder(outFile, out.Rate, 16, out.Channels)

	format := &audio.Format{
		NumChannels: out.Channels,
		SampleRate:  out.Rate,
	}

	buf := make([]byte, 4096*out.FrameSize())

	for {
		n, err := m.Read(buf)
		if n > 0 {
			samples := make([]int, n/2)
			for i := range samples {
				samples[i] = int(int16(binary.LittleEndian.Uint16(buf[i*2:])))
			}

			writeErr := encoder.Write(&audio.IntBuffer{
				Format:         format,
				Data:           samples,
				SourceBitDepth: 16,
			})
			if writeErr != nil {
				log.Fatal(writeErr)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			log.Fatal(err)
		}
	}

	if err := encoder.Close(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("AIFF file written to", outPath)
}
