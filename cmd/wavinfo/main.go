// This tool prints the format, duration, loop points, and metadata of a
// WAV or AIFF file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/wavstream"
	"github.com/cwbudde/wavstream/pcm"
)

const missingPathMessage = "You must pass the path of the file to inspect"

var errMissingPath = errors.New("missing path argument")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	m, err := wavstream.New(file, pcm.Spec{}, false)
	if err != nil {
		return err
	}
	defer m.Close()

	spec := m.Format()
	fmt.Fprintf(out, "Format: %s, %d channel(s), %d Hz\n", spec.Format, spec.Channels, spec.Rate)
	fmt.Fprintf(out, "Duration: %s\n", m.Duration())

	for i, loop := range m.Loops() {
		count := fmt.Sprintf("%d", loop.PlayCount)
		if loop.PlayCount == 0 {
			count = "infinite"
		}

		fmt.Fprintf(out, "Loop %d: frames [%d, %d) x %s\n", i, loop.StartFrame, loop.StopFrame, count)
	}

	tags := []wavstream.MetaTag{
		wavstream.MetaTitle,
		wavstream.MetaArtist,
		wavstream.MetaAlbum,
		wavstream.MetaCopyright,
	}

	for _, tag := range tags {
		if v, ok := m.Tag(tag); ok {
			fmt.Fprintf(out, "%s: %s\n", tag, v)
		}
	}

	return nil
}
