package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	ico "github.com/ajroetker/go-ico"
	"github.com/ajroetker/go-ico/internal/oops"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type fileInfo struct {
	Path    string      `json:"path" yaml:"path"`
	Type    string      `json:"type" yaml:"type"`
	Count   int         `json:"count" yaml:"count"`
	Entries []entryInfo `json:"entries" yaml:"entries"`
}

type entryInfo struct {
	Index             int    `json:"index" yaml:"index"`
	Width             int    `json:"width" yaml:"width"`
	Height            int    `json:"height" yaml:"height"`
	Planes            uint16 `json:"planes" yaml:"planes"`
	BitCount          uint16 `json:"bit_count" yaml:"bit_count"`
	Kind              string `json:"kind" yaml:"kind"`
	Size              uint32 `json:"size" yaml:"size"`
	Offset            uint32 `json:"offset" yaml:"offset"`
	OutOfOrder        bool   `json:"out_of_order,omitempty" yaml:"out_of_order,omitempty"`
	OverlapsDirectory bool   `json:"overlaps_directory,omitempty" yaml:"overlaps_directory,omitempty"`
}

func init() {
	var format string

	infoCommand := &cobra.Command{
		Use:   "info FILE...",
		Short: "Print the header and directory of icon files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]*fileInfo, 0, len(args))
			for _, path := range args {
				info, err := describeFile(path)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			return writeInfo(cmd.OutOrStdout(), format, infos)
		},
	}
	infoCommand.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	rootCommand.AddCommand(infoCommand)
}

func describeFile(path string) (*fileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oops.New(err, "failed to open %s", path)
	}
	defer f.Close()

	info, err := describe(path, f)
	if err != nil {
		return nil, oops.New(err, "failed to read %s", path)
	}
	return info, nil
}

// describe parses the directory of src. Only the first two bytes of each
// payload are read, to tell PNG from bitmap; payloads shorter than that
// are reported as unknown.
func describe(path string, src io.ReaderAt) (*fileInfo, error) {
	c, err := ico.Parse(src)
	if err != nil {
		return nil, err
	}

	info := &fileInfo{
		Path:    path,
		Type:    c.Header.Type.String(),
		Count:   len(c.Entries),
		Entries: make([]entryInfo, len(c.Entries)),
	}
	layout := c.Layout()
	for i, e := range c.Entries {
		w, h := e.Dimensions()
		info.Entries[i] = entryInfo{
			Index:             i,
			Width:             w,
			Height:            h,
			Planes:            e.Planes,
			BitCount:          e.BitCount,
			Kind:              "unknown",
			Size:              e.Size,
			Offset:            e.Offset,
			OutOfOrder:        layout[i].OutOfOrder,
			OverlapsDirectory: layout[i].OverlapsDirectory,
		}

		magic := make([]byte, min(2, e.Size))
		n, err := src.ReadAt(magic, int64(e.Offset))
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading entry %d at offset %d: %w", i, e.Offset, err)
		}
		if kind, err := ico.Classify(magic[:n]); err == nil {
			info.Entries[i].Kind = kind.String()
		}
	}
	return info, nil
}

func writeInfo(w io.Writer, format string, infos []*fileInfo) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, info := range infos {
			writeText(w, info)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q, want text, json or yaml", format)
	}
}

func writeText(w io.Writer, info *fileInfo) {
	fmt.Fprintf(w, "%s: %s, %d %s\n", info.Path, info.Type, info.Count, plural(info.Count, "image", "images"))
	for _, e := range info.Entries {
		fmt.Fprintf(w, "  #%d %dx%d", e.Index, e.Width, e.Height)
		if info.Type == ico.TypeCursor.String() {
			// Cursors keep the hotspot in these two fields.
			fmt.Fprintf(w, " hotspot %d,%d", e.Planes, e.BitCount)
		} else {
			fmt.Fprintf(w, " %d bpp", e.BitCount)
		}
		fmt.Fprintf(w, " %s, %s at offset %d", e.Kind, humanize.Bytes(uint64(e.Size)), e.Offset)
		if e.OutOfOrder {
			fmt.Fprint(w, " (out of order)")
		}
		if e.OverlapsDirectory {
			fmt.Fprint(w, " (overlaps directory)")
		}
		fmt.Fprintln(w)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
