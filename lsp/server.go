// Package lsp serves class files over the Language Server Protocol. A
// class is presented as its inspection tree (see format.TreeEncoder):
// document symbols and hover refer to lines of that rendering.
package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhamidi/classkit/classfile"
	"github.com/dhamidi/classkit/classpath"
	"github.com/dhamidi/classkit/format"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const (
	lsName = "classkit"

	// classScheme addresses a class on the loader's classpath by internal
	// name, e.g. classkit:java/lang/String.
	classScheme = "classkit:"

	maxWorkspaceSymbols = 200
)

type document struct {
	class *classfile.ClassFile
	tree  *format.Node
}

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
	loader  *classpath.Loader
	log     commonlog.Logger

	mu   sync.Mutex
	docs map[string]*document
}

// NewServer returns a server resolving classkit: URIs and workspace
// symbols through loader, which may be nil.
func NewServer(version string, loader *classpath.Loader) *Server {
	s := &Server{
		version: version,
		loader:  loader,
		log:     commonlog.GetLogger("classkit.lsp"),
		docs:    make(map[string]*document),
	}

	s.handler = protocol.Handler{
		Initialize:                 s.initialize,
		Initialized:                s.initialized,
		Shutdown:                   s.shutdown,
		SetTrace:                   s.setTrace,
		TextDocumentDidOpen:        s.textDocumentDidOpen,
		TextDocumentDidClose:       s.textDocumentDidClose,
		TextDocumentDidSave:        s.textDocumentDidSave,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentHover:          s.textDocumentHover,
		WorkspaceSymbol:            s.workspaceSymbol,
	}

	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.forget(params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.forget(params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.forget(params.TextDocument.URI)
	if name, ok := strings.CutPrefix(params.TextDocument.URI, classScheme); ok && s.loader != nil {
		s.loader.Evict(name)
	}
	return nil
}

func (s *Server) forget(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// document parses the class behind uri once and caches it until the
// client reopens, closes or saves it.
func (s *Server) document(uri string) (*document, error) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if ok {
		return doc, nil
	}

	cf, err := s.load(uri)
	if err != nil {
		s.log.Warningf("%s: %s", uri, err)
		return nil, err
	}
	doc = &document{class: cf, tree: format.Build(cf)}

	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc, nil
}

func (s *Server) load(uri string) (*classfile.ClassFile, error) {
	if name, ok := strings.CutPrefix(uri, classScheme); ok {
		if s.loader == nil {
			return nil, fmt.Errorf("no classpath configured for %s", uri)
		}
		return s.loader.Load(name)
	}
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) != ".class" {
		return nil, fmt.Errorf("not a class file: %s", path)
	}
	return classfile.ParseFile(path)
}

func (s *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	return []protocol.DocumentSymbol{documentSymbol(doc.tree)}, nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	n := doc.tree.Find(int(params.Position.Line))
	if n == nil {
		return nil, nil
	}
	r := lineRange(n)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hoverText(doc.class, n),
		},
		Range: &r,
	}, nil
}

func (s *Server) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	if s.loader == nil {
		return nil, nil
	}
	names, err := s.loader.Names()
	if err != nil {
		return nil, err
	}
	return classSymbols(names, params.Query, maxWorkspaceSymbols), nil
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}
