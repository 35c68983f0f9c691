package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/classkit/classfile"
	"github.com/dhamidi/classkit/classpath"
	"github.com/dhamidi/classkit/config"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("classkit")

// globalOptions holds the persistent flags and the configuration they
// were merged into.
type globalOptions struct {
	configPath string
	verbose    int
	classpath  []string
	write      bool

	cfg *config.Config
}

func (o *globalOptions) setup(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		path = config.Find(".")
	} else if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		cfg.Loader.Classpath = relativeTo(filepath.Dir(path), cfg.Loader.Classpath)
	}

	if cmd.Flags().Changed("classpath") {
		cfg.Loader.Classpath = o.classpath
	}
	if o.write {
		cfg.Loader.WriteAccess = true
	}
	cfg.Log.Verbosity += o.verbose
	o.cfg = cfg

	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	log.Debugf("config %q, classpath %s", path, strings.Join(cfg.Loader.Classpath, string(os.PathListSeparator)))
	return nil
}

func relativeTo(base string, entries []string) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		if filepath.IsAbs(e) {
			out[i] = e
		} else {
			out[i] = filepath.Join(base, e)
		}
	}
	return out
}

func (o *globalOptions) parseOptions() []classfile.Option {
	if o.cfg.Loader.WriteAccess {
		return []classfile.Option{classfile.WithWriteAccess()}
	}
	return nil
}

// loader opens the configured classpath, or entries when given.
func (o *globalOptions) loader(entries ...string) (*classpath.Loader, error) {
	if len(entries) == 0 {
		entries = o.cfg.Loader.Classpath
	}
	opts := []classpath.Option{classpath.WithWorkers(o.cfg.Loader.Workers)}
	if o.cfg.Loader.WriteAccess {
		opts = append(opts, classpath.WithWriteAccess())
	}
	return classpath.New(entries, opts...)
}

// openClass reads arg as a class file path when it ends in .class and as
// a class name on the classpath otherwise.
func (o *globalOptions) openClass(arg string) (*classfile.ClassFile, error) {
	if filepath.Ext(arg) == ".class" {
		cf, err := classfile.ParseFile(arg, o.parseOptions()...)
		if err != nil {
			return nil, fmt.Errorf("parse class file: %w", err)
		}
		for _, d := range cf.Diagnostics.Filter(classfile.SeverityWarning) {
			log.Warningf("%s: %s", arg, d)
		}
		return cf, nil
	}

	l, err := o.loader()
	if err != nil {
		return nil, err
	}
	defer l.Close()
	cf, err := l.Load(arg)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", arg, err)
	}
	return cf, nil
}

// findMethods matches method against cf's methods. method is a bare name or
// a name followed by its descriptor.
func findMethods(cf *classfile.ClassFile, method string) ([]*classfile.MethodInfo, error) {
	if i := strings.IndexByte(method, '('); i >= 0 {
		if m := cf.GetMethod(method[:i], method[i:]); m != nil {
			return []*classfile.MethodInfo{m}, nil
		}
	} else if ms := cf.GetMethods(method); len(ms) > 0 {
		return ms, nil
	}
	return nil, fmt.Errorf("no method %s in %s", method, classfile.InternalToSourceName(cf.ClassName()))
}
