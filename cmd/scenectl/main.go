// Command scenectl inspects and converts scene files from the shell.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/inamate/sketch/internal/auth"
	"github.com/inamate/sketch/internal/codec"
	"github.com/inamate/sketch/internal/config"
	"github.com/inamate/sketch/internal/document"
	"github.com/inamate/sketch/internal/media"
	"github.com/inamate/sketch/internal/typeid"
)

const pipeName = "-"

const usage = `Usage: scenectl <command> [flags]

Commands:
  inspect     print a summary of a scene file
  normalize   re-encode a scene file in the current format
  sample      write the built-in sample scene
  thumbnail   write a WebP preview of every image layer
  token       issue a session token for a user id
`

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	c := codec.New(cfg.Codec())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "inspect":
		err = inspect(ctx, c, args)
	case "normalize":
		err = normalize(ctx, c, args)
	case "sample":
		err = sample(ctx, c, args)
	case "thumbnail":
		err = thumbnail(ctx, c, args)
	case "token":
		err = token(cfg, args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenectl %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func inspect(ctx context.Context, c *codec.Codec, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", pipeName, "Source scene file")
	fs.Parse(args)

	data, err := readInput(*in)
	if err != nil {
		return err
	}
	sum, err := c.Inspect(ctx, data)
	if err != nil {
		return err
	}
	fmt.Println(sum.MarshalIndent())
	return nil
}

func normalize(ctx context.Context, c *codec.Codec, args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	in := fs.String("in", pipeName, "Source scene file")
	out := fs.String("out", pipeName, "Destination scene file")
	fs.Parse(args)

	data, err := readInput(*in)
	if err != nil {
		return err
	}
	start := time.Now()
	doc, err := c.Import(ctx, data)
	if err != nil {
		return err
	}
	encoded, err := c.Export(ctx, doc)
	if err != nil {
		return err
	}
	slog.Info("normalized scene", "layers", len(doc.Layers), "in", len(data), "out", len(encoded), "took", time.Since(start))
	return writeOutput(*out, encoded)
}

func sample(ctx context.Context, c *codec.Codec, args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	out := fs.String("out", pipeName, "Destination scene file")
	fs.Parse(args)

	data, err := c.Export(ctx, document.NewSampleDocument(typeid.NewSceneID()))
	if err != nil {
		return err
	}
	return writeOutput(*out, data)
}

func thumbnail(ctx context.Context, c *codec.Codec, args []string) error {
	fs := flag.NewFlagSet("thumbnail", flag.ExitOnError)
	in := fs.String("in", pipeName, "Source scene file")
	dir := fs.String("dir", ".", "Destination directory")
	size := fs.Int("size", 128, "Thumbnail side in pixels")
	fs.Parse(args)

	data, err := readInput(*in)
	if err != nil {
		return err
	}
	doc, err := c.Import(ctx, data)
	if err != nil {
		return err
	}
	var walk func([]*document.Layer) error
	walk = func(layers []*document.Layer) error {
		for _, l := range layers {
			if g, ok := l.Group(); ok {
				if err := walk(g.Children); err != nil {
					return err
				}
				continue
			}
			img, ok := l.Image()
			if !ok || img.Bitmap == nil {
				continue
			}
			thumb, err := media.Thumbnail(img.Bitmap, *size)
			if err != nil {
				return fmt.Errorf("layer %s: %w", l.ID, err)
			}
			name := filepath.Join(*dir, l.ID+".webp")
			if err := os.WriteFile(name, thumb, 0o644); err != nil {
				return err
			}
			fmt.Println(name)
		}
		return nil
	}
	return walk(doc.Layers)
}

func token(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	user := fs.String("user", "", "User id (minted when empty)")
	ttl := fs.Duration("ttl", auth.DefaultTokenTTL, "Token lifetime")
	fs.Parse(args)

	if *user == "" {
		*user = typeid.New(typeid.PrefixUser)
		fmt.Fprintln(os.Stderr, "user:", *user)
	}
	tok, err := auth.NewService(cfg.JWTSecret).IssueToken(*user, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func readInput(in string) ([]byte, error) {
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, fmt.Errorf("unable to open the source file: %w", err)
	}
	return data, nil
}

// writeOutput refuses to dump the binary container onto a terminal.
func writeOutput(out string, data []byte) error {
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	return nil
}
