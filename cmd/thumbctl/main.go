package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/httpclient"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/imaging"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/infra"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/overlay"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/pipeline"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/providers/replicate"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/storage"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/templates"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "thumbctl",
		Short: "Generate expression-edited thumbnails from the command line",
		Long: `thumbctl runs the thumbnail pipeline locally: pick a template or an
image, edit the facial expression and draw the caption.

Examples:
  thumbctl templates
  thumbctl generate --template gaming --text "EPIC WIN" --smile 1 --out win.png
  thumbctl generate --template vlog --text "HMM" --preset thoughtful --smile 0.2 --out hmm.png
  thumbctl generate --image me.jpg --text "HOW TO" --position top --skip-edit --out preview.png`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(newTemplatesCmd(), newGenerateCmd())
	return root
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := infra.LoadLocalConfig()
			reg, err := templates.NewRegistry(cfg.TemplateDir)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
			for _, t := range reg.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Category)
			}
			return tw.Flush()
		},
	}
}

type generateOptions struct {
	text       string
	templateID string
	imagePath  string
	out        string
	fontFamily string
	fontSize   int
	color      string
	outline    int
	position   string
	preset     string
	skipEdit   bool
}

func newGenerateCmd() *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one thumbnail and write it as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.text, "text", "", "Caption text")
	f.StringVar(&o.templateID, "template", "", "Template id, see: thumbctl templates")
	f.StringVar(&o.imagePath, "image", "", "Path to a JPEG or PNG photo")
	f.StringVarP(&o.out, "out", "o", "", "Output PNG path")
	f.StringVar(&o.fontFamily, "font-family", domain.DefaultFontFamily, "Caption font family")
	f.IntVar(&o.fontSize, "font-size", domain.DefaultFontSize, "Caption font size in pixels")
	f.StringVar(&o.color, "color", domain.DefaultColor, "Caption fill color (#RRGGBB)")
	f.IntVar(&o.outline, "outline", domain.DefaultOutlineWidth, "Black outline width in pixels")
	f.StringVar(&o.position, "position", string(domain.DefaultPosition), "Caption position: top, middle or bottom")
	f.StringVar(&o.preset, "preset", "", "Expression preset: "+presetNames()+"; expression flags override its fields")
	f.BoolVar(&o.skipEdit, "skip-edit", false, "Skip the expression editor and only draw the caption")
	for _, r := range domain.ExpressionRanges {
		f.Float64(flagName(r.Name), 0, fmt.Sprintf("%s (%g to %g)", r.Name, r.Min, r.Max))
	}
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func presetNames() string {
	names := make([]string, 0, len(domain.ExpressionPresets))
	for _, p := range domain.ExpressionPresets {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// formValues maps the flags onto the HTTP form fields.
func formValues(cmd *cobra.Command, o generateOptions) (url.Values, error) {
	values := url.Values{}
	values.Set("text", o.text)
	if o.templateID != "" {
		values.Set("templateId", o.templateID)
	}
	settings, err := json.Marshal(map[string]any{
		"fontFamily":   o.fontFamily,
		"fontSize":     o.fontSize,
		"color":        o.color,
		"outlineWidth": o.outline,
		"position":     o.position,
	})
	if err != nil {
		return nil, err
	}
	values.Set("textSettings", string(settings))
	if o.preset != "" {
		values.Set(domain.PresetField, o.preset)
	}
	for _, r := range domain.ExpressionRanges {
		name := flagName(r.Name)
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return nil, err
		}
		values.Set(r.Name, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return values, nil
}

func runGenerate(cmd *cobra.Command, o generateOptions) error {
	ctx := cmd.Context()
	cfg := infra.LoadLocalConfig()
	logger := infra.NewLogger(cfg.AppEnv).Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})

	values, err := formValues(cmd, o)
	if err != nil {
		return err
	}

	var upload domain.UploadedFile
	if o.imagePath != "" {
		spool, err := storage.NewSpool(cfg.UploadDir, cfg.MaxUploadBytes)
		if err != nil {
			return err
		}
		sf, err := spoolLocalFile(ctx, spool, o.imagePath)
		if err != nil {
			return err
		}
		upload = sf
	}
	req, err := domain.NewThumbnailRequest(values, upload)
	if err != nil {
		if upload != nil {
			_ = upload.Remove()
		}
		return err
	}

	var editor pipeline.Editor = pipeline.Passthrough
	if !o.skipEdit {
		if cfg.ReplicateAPIToken == "" {
			_ = req.Source.Release()
			return errors.New("REPLICATE_API_TOKEN is required unless --skip-edit is set")
		}
		editor = replicate.NewClient(replicate.Options{
			APIToken:     cfg.ReplicateAPIToken,
			BaseURL:      cfg.ReplicateBaseURL,
			ModelVersion: cfg.ReplicateModelVersion,
			Timeout:      cfg.EditorTimeout,
			PollInterval: cfg.EditorPollInterval,
			HTTPClient:   httpclient.New(httpclient.Options{PreferIPv4: cfg.PreferIPv4, Timeout: cfg.EditorTimeout}),
			Logger:       &logger,
		})
	}

	p, err := buildPipeline(cfg, editor, &logger)
	if err != nil {
		_ = req.Source.Release()
		return err
	}
	res, err := p.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.out, res.PNG, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", o.out, res.Width, res.Height)
	return nil
}

func buildPipeline(cfg *infra.Config, editor pipeline.Editor, logger *infra.Logger) (*pipeline.Pipeline, error) {
	reg, err := templates.NewRegistry(cfg.TemplateDir)
	if err != nil {
		return nil, err
	}
	fonts, err := overlay.NewFontBook(cfg.FontDir)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Options{
		Resolver:   &pipeline.Resolver{Templates: reg, MaxBytes: cfg.MaxUploadBytes},
		Normalizer: imaging.NewNormalizer(),
		Editor:     editor,
		Renderer:   overlay.NewRenderer(fonts),
		Logger:     logger,
	})
}

// spoolLocalFile copies the photo into the spool so the pipeline can remove
// its copy without touching the original.
func spoolLocalFile(ctx context.Context, spool *storage.Spool, path string) (*storage.SpooledFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sf, err := spool.Write(ctx, filepath.Base(path), "", f)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, spool.MaxBytes())
	}
	return sf, err
}
