package cmd

import (
	"fmt"
	"runtime"

	"github.com/gophertribe/devtool/build"
	"github.com/spf13/cobra"
)

const (
	binary        = "dist/ambientlight"
	mainPackage   = "./cmd/ambientlight"
	configPackage = "github.com/mklimuk/ambientlight/pkg/config"
	builderImage  = "gophertribe/gobuild:1.25-bookworm"
)

type buildTarget struct {
	os, arch           string
	crossOS, crossArch string
	version            string
	noCache            bool
}

func (t buildTarget) native() bool {
	return t.os == runtime.GOOS && t.arch == runtime.GOARCH
}

// BuildCmd builds the cli natively, or inside the builder image for foreign
// targets since the HID adapter needs cgo.
func BuildCmd() *cobra.Command {
	var t buildTarget
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the ambientlight cli",
		RunE: func(cmd *cobra.Command, args []string) error {
			if t.native() {
				os, arch := t.os, t.arch
				if t.crossOS != "" && t.crossArch != "" {
					os, arch = t.crossOS, t.crossArch
				}
				return build.GoBuild(binary, mainPackage, build.GoBuildOpts{
					Version:       t.version,
					InjectVersion: true,
					ConfigPackage: configPackage,
					EnableCgo:     true,
					Arch:          arch,
					OS:            os,
				})
			}
			return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", t.os, t.arch),
				[]string{"build", "--version", t.version, "--cross-os", t.crossOS, "--cross-arch", t.crossArch},
				build.DockerBuildOpts{
					NoCache: t.noCache,
					Image:   builderImage,
				})
		},
	}
	cmd.Flags().BoolVar(&t.noCache, "no-cache", false, "do not use cache when building in docker")
	cmd.Flags().StringVar(&t.version, "version", "latest", "version of the cli")
	cmd.Flags().StringVar(&t.os, "os", runtime.GOOS, "os of the build host")
	cmd.Flags().StringVar(&t.arch, "arch", runtime.GOARCH, "arch of the build host")
	cmd.Flags().StringVar(&t.crossOS, "cross-os", "", "os to cross-compile for")
	cmd.Flags().StringVar(&t.crossArch, "cross-arch", "", "arch to cross-compile for, e.g. arm for a NanoPi NEO")
	return cmd
}
