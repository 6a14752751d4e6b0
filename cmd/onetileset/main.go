package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bodgit/onetileset"
	"github.com/bodgit/onetileset/codec"
	"github.com/bodgit/onetileset/object"
	"github.com/bodgit/onetileset/sarc"
	"github.com/urfave/cli/v2"
)

const defaultDB = "onetileset.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newOneTileset(c *cli.Context, opts ...onetileset.Option) (*onetileset.OneTileset, error) {
	cd, err := codec.Lookup(c.String("codec"), c.Int("level"))
	if err != nil {
		return nil, err
	}
	return onetileset.New(newLogger(c), append(opts, onetileset.WithCodec(cd))...), nil
}

func archiveOptions(c *cli.Context) ([]sarc.Option, error) {
	opts := []sarc.Option{sarc.WithPadding(c.Int("padding"))}
	switch strings.ToLower(c.String("endian")) {
	case "big", "be":
		opts = append(opts, sarc.WithByteOrder(binary.BigEndian))
	case "little", "le":
		opts = append(opts, sarc.WithByteOrder(binary.LittleEndian))
	default:
		return nil, fmt.Errorf("unknown byte order %q", c.String("endian"))
	}
	return opts, nil
}

func needArgs(c *cli.Context, n int) {
	if c.NArg() < n {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
}

var (
	codecFlag = &cli.StringFlag{
		Name:  "codec",
		Value: "yaz0",
		Usage: "compression for written files, one of " + strings.Join(codec.Names(), ", "),
	}
	levelFlag = &cli.IntFlag{
		Name:    "level",
		EnvVars: []string{"ONETILESET_LEVEL"},
		Value:   onetileset.DefaultLevel,
		Usage:   "compression level",
	}
)

func main() {
	app := cli.NewApp()

	app.Name = "onetileset"
	app.Usage = "Tileset conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"ONETILESET_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "decompress",
			Usage:     "Decompress a file",
			ArgsUsage: "SOURCE TARGET",
			Action: func(c *cli.Context) error {
				needArgs(c, 2)

				b, err := onetileset.New(newLogger(c)).Decompress(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if err := ioutil.WriteFile(c.Args().Get(1), b, 0o644); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "compress",
			Usage:     "Compress a file",
			ArgsUsage: "SOURCE TARGET",
			Flags:     []cli.Flag{codecFlag, levelFlag},
			Action: func(c *cli.Context) error {
				needArgs(c, 2)

				o, err := newOneTileset(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				b, err := ioutil.ReadFile(c.Args().Get(0))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if err := o.Compress(c.Args().Get(1), b); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "extract",
			Usage:     "Extract the files in an archive",
			ArgsUsage: "ARCHIVE DIRECTORY",
			Action: func(c *cli.Context) error {
				needArgs(c, 2)

				if err := onetileset.New(newLogger(c)).Extract(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "archive",
			Usage:     "Create an archive from a directory",
			ArgsUsage: "DIRECTORY ARCHIVE",
			Flags: []cli.Flag{
				codecFlag,
				levelFlag,
				&cli.StringFlag{
					Name:  "endian",
					Value: "big",
					Usage: "byte order, big or little",
				},
				&cli.IntFlag{
					Name:  "padding",
					Value: 4,
					Usage: "alignment of file data",
				},
			},
			Action: func(c *cli.Context) error {
				needArgs(c, 2)

				o, err := newOneTileset(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				opts, err := archiveOptions(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if err := o.Archive(c.Args().Get(0), c.Args().Get(1), opts...); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "export",
			Usage:       "Export tileset objects to the portable format",
			Description: "Several tilesets are loaded together, each in the slot its name gives.",
			ArgsUsage:   "DIRECTORY TILESET...",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "catalog",
					Usage: "record exported objects in the catalog",
				},
			},
			Action: func(c *cli.Context) error {
				needArgs(c, 2)

				var opts []onetileset.Option
				if c.Bool("catalog") {
					catalog, err := onetileset.NewCatalog(c.String("db"))
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					defer catalog.Close()
					opts = append(opts, onetileset.WithCatalog(catalog))
				}

				o := onetileset.New(newLogger(c), opts...)
				if err := o.Export(c.Args().First(), c.Args().Tail()...); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "import",
			Usage:     "Pack portable objects into tilesets",
			ArgsUsage: "DIRECTORY TARGET",
			Flags: []cli.Flag{
				codecFlag,
				levelFlag,
				&cli.StringFlag{
					Name:  "name",
					Value: "OneTileset",
					Usage: "tileset name",
				},
				&cli.IntFlag{
					Name:  "slot",
					Value: -1,
					Usage: "pack into a single slot, 0 to 3",
				},
			},
			Action: func(c *cli.Context) error {
				needArgs(c, 2)

				o, err := newOneTileset(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				files, err := o.Import(c.Args().Get(0), c.Args().Get(1), c.String("name"), c.Int("slot"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				for _, file := range files {
					fmt.Println(file)
				}

				return nil
			},
		},
		{
			Name:      "render",
			Usage:     "Render a tileset object to a PNG image",
			ArgsUsage: "TILESET INDEX IMAGE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "width",
					Usage: "width in tiles, defaults to the object width",
				},
				&cli.IntFlag{
					Name:  "height",
					Usage: "height in tiles, defaults to the object height",
				},
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce to this many colours",
				},
			},
			Action: func(c *cli.Context) error {
				needArgs(c, 3)

				var index int
				if _, err := fmt.Sscan(c.Args().Get(1), &index); err != nil {
					return cli.NewExitError(fmt.Errorf("bad index %q", c.Args().Get(1)), 1)
				}

				o := onetileset.New(newLogger(c))
				if err := o.Render(c.Args().Get(0), index, c.Int("width"), c.Int("height"), c.Int("colors"), c.Args().Get(2)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "catalog",
			Usage:     "List catalogued objects with a role",
			ArgsUsage: "ROLE",
			Action: func(c *cli.Context) error {
				needArgs(c, 1)

				role, err := object.ParseRole(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				catalog, err := onetileset.NewCatalog(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer catalog.Close()

				entries, err := catalog.FindByRole(role)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				for _, e := range entries {
					fmt.Printf("%s\t%s\t%dx%d\t%d tiles\n", e.Source, e.Name, e.Width, e.Height, e.Tiles)
				}

				return nil
			},
		},
		{
			Name:      "batch",
			Usage:     "Export every tileset below a directory",
			ArgsUsage: "SOURCE TARGET",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "workers",
					Value: runtime.NumCPU(),
					Usage: "number of tilesets exported at once",
				},
			},
			Action: func(c *cli.Context) error {
				needArgs(c, 2)

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()

				o := onetileset.New(newLogger(c))
				if err := o.Batch(ctx, c.Args().Get(0), c.Args().Get(1), c.Int("workers")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
