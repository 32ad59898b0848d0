// Package staticanalysis implements the Static Analyzer (SPEC_FULL.md
// §4.5): it locates escape-prone patterns in a single Go function's body
// without running it, adapting the Python ast.NodeVisitor original onto
// go/ast.
package staticanalysis

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/joeycumines/escapesentry/internal/model"
)

// concurrencyKind is the Go analogue of the original's
// Thread/Timer/Process/Pool/*PoolExecutor taxonomy: Go's concurrency
// constructor is the `go` statement itself, so what gets tracked here is
// the handle (channel, WaitGroup, timer, subprocess, errgroup) a goroutine
// is expected to be joined through, not the goroutine itself.
type concurrencyKind string

const (
	kindChannel   concurrencyKind = "channel"
	kindWaitGroup concurrencyKind = "sync.WaitGroup"
	kindTimer     concurrencyKind = "timer"
	kindProcess   concurrencyKind = "subprocess"
	kindErrgroup  concurrencyKind = "errgroup.Group"
)

type concurrencyObject struct {
	line, col int
	kind      concurrencyKind
}

// builtinCalls are excluded from the heap-allocation heuristic: they either
// can't escape the way a constructed object can, or are already covered by
// a more specific rule.
var builtinCalls = map[string]bool{
	"len": true, "cap": true, "append": true, "copy": true, "delete": true,
	"panic": true, "recover": true, "print": true, "println": true,
	"make": true, "new": true,
}

// cleanupCallees are method names whose presence in a call expression means
// a concurrency handle passed to it is being cleaned up, not leaked.
var cleanupCallees = []string{"join", "wait", "close", "shutdown", "stop"}

// Analyze parses src (a single Go source file, filename for diagnostics
// only) and returns every escape-pattern finding located in functionName's
// body. It is idempotent: every call gets a fresh token.FileSet and
// visitor.
func Analyze(filename, src, functionName string) ([]model.EscapeFinding, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, &model.ParseFailureError{Path: filename, Cause: err}
	}

	var target *ast.FuncDecl
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == functionName {
			target = fn
			break
		}
	}
	if target == nil || target.Body == nil {
		return nil, &model.TargetNotFoundError{Target: model.TargetRef{Locator: filename, Symbol: functionName}}
	}

	v := newVisitor(fset, src)
	v.seedParams(target)
	v.seedPackageVars(file)

	astutil.Apply(target.Body, v.pre, nil)
	v.checkUnjoinedConcurrency()

	return v.findings, nil
}

type visitor struct {
	fset  *token.FileSet
	lines []string

	locals             map[string]bool
	packageVars        map[string]bool
	concurrencyObjects map[string]concurrencyObject
	joined             map[string]bool
	reassigned         map[string]bool

	findings []model.EscapeFinding
}

func newVisitor(fset *token.FileSet, src string) *visitor {
	return &visitor{
		fset:               fset,
		lines:              strings.Split(src, "\n"),
		locals:             map[string]bool{},
		packageVars:        map[string]bool{},
		concurrencyObjects: map[string]concurrencyObject{},
		joined:             map[string]bool{},
		reassigned:         map[string]bool{},
	}
}

func (v *visitor) seedParams(fn *ast.FuncDecl) {
	if fn.Recv != nil {
		for _, f := range fn.Recv.List {
			for _, n := range f.Names {
				v.locals[n.Name] = true
			}
		}
	}
	if fn.Type.Params != nil {
		for _, f := range fn.Type.Params.List {
			for _, n := range f.Names {
				v.locals[n.Name] = true
			}
		}
	}
}

// seedPackageVars records every package-level var name, Go's closest
// analogue to Python's module globals, so an in-body assignment to one can
// be recognized as a "global" escape.
func (v *visitor) seedPackageVars(file *ast.File) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}
		for _, spec := range gd.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, n := range vs.Names {
				v.packageVars[n.Name] = true
			}
		}
	}
}

func (v *visitor) pre(c *astutil.Cursor) bool {
	switch n := c.Node().(type) {
	case *ast.AssignStmt:
		v.visitAssign(n)
	case *ast.DeclStmt:
		v.visitDeclStmt(n)
	case *ast.GoStmt:
		v.visitGo(n)
	case *ast.ReturnStmt:
		v.visitReturn(n)
	case *ast.CallExpr:
		v.visitCall(n)
	case *ast.UnaryExpr:
		v.visitUnary(n)
	case *ast.FuncLit:
		v.visitFuncLit(n)
		return false // closures are inspected as a unit, not recursed into
	}
	return true
}

func (v *visitor) visitAssign(n *ast.AssignStmt) {
	for i, lhs := range n.Lhs {
		names := extractNames(lhs)
		for _, name := range names {
			if _, tracked := v.concurrencyObjects[name]; tracked {
				v.reassigned[name] = true
			}
			if v.packageVars[name] && !v.locals[name] {
				pos := v.fset.Position(n.Pos())
				v.add(model.FindingGlobal, pos.Line, pos.Column, name,
					fmt.Sprintf("variable %q assigned from package scope", name), model.ConfidenceHigh)
			}
			if n.Tok == token.DEFINE {
				v.locals[name] = true
			}
		}

		if i < len(n.Rhs) {
			v.classifyAssignedValue(lhs, n.Rhs[i], n.Pos())
		}
	}
}

func (v *visitor) visitDeclStmt(n *ast.DeclStmt) {
	gd, ok := n.Decl.(*ast.GenDecl)
	if !ok || gd.Tok != token.VAR {
		return
	}
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, n := range vs.Names {
			v.locals[n.Name] = true
		}
		if sel, ok := vs.Type.(*ast.SelectorExpr); ok && exprString(sel) == "errgroup.Group" {
			for _, n := range vs.Names {
				pos := v.fset.Position(vs.Pos())
				v.concurrencyObjects[n.Name] = concurrencyObject{line: pos.Line, col: pos.Column, kind: kindErrgroup}
			}
		}
	}
}

// classifyAssignedValue records name as a tracked concurrency handle when
// rhs is a recognized constructor, and otherwise applies the low-confidence
// heap-allocation heuristic.
func (v *visitor) classifyAssignedValue(lhs ast.Expr, rhs ast.Expr, pos token.Pos) {
	name, ok := lhs.(*ast.Ident)
	if !ok {
		return
	}

	if kind, ok := concurrencyKindOf(rhs); ok {
		p := v.fset.Position(pos)
		v.concurrencyObjects[name.Name] = concurrencyObject{line: p.Line, col: p.Column, kind: kind}
		return
	}

	call, ok := rhs.(*ast.CallExpr)
	if !ok {
		return
	}
	callee := exprString(call.Fun)
	if builtinCalls[callee] || strings.HasPrefix(callee, "make(") {
		return
	}
	p := v.fset.Position(pos)
	v.add(model.FindingHeap, p.Line, p.Column, name.Name,
		fmt.Sprintf("variable %q assigned the result of a heap-allocating call", name.Name), model.ConfidenceLow)
}

// concurrencyKindOf matches a constructor expression against the Go
// analogues of the original's Thread/Timer/Process/Pool registry.
func concurrencyKindOf(expr ast.Expr) (concurrencyKind, bool) {
	switch e := expr.(type) {
	case *ast.CallExpr:
		callee := exprString(e.Fun)
		switch {
		case callee == "make" && len(e.Args) > 0:
			if _, ok := e.Args[0].(*ast.ChanType); ok {
				return kindChannel, true
			}
		case strings.HasSuffix(callee, "time.AfterFunc"), strings.HasSuffix(callee, "time.NewTimer"),
			strings.HasSuffix(callee, "context.AfterFunc"):
			return kindTimer, true
		case strings.HasSuffix(callee, "exec.Command"), strings.HasSuffix(callee, "exec.CommandContext"):
			return kindProcess, true
		}
	case *ast.UnaryExpr:
		if e.Op == token.AND {
			return concurrencyKindOf(e.X)
		}
	case *ast.CompositeLit:
		if sel, ok := e.Type.(*ast.SelectorExpr); ok {
			switch exprString(sel) {
			case "sync.WaitGroup":
				return kindWaitGroup, true
			case "errgroup.Group":
				return kindErrgroup, true
			}
		}
	}
	return "", false
}

func (v *visitor) visitGo(_ *ast.GoStmt) {
	// The go statement itself is Go's concurrency constructor. Nothing to
	// record here directly: if its call expression is a function literal,
	// the traversal reaches it next and the *ast.FuncLit case in pre()
	// handles closure-capture detection.
}

func (v *visitor) visitReturn(n *ast.ReturnStmt) {
	for _, r := range n.Results {
		for _, name := range extractNames(r) {
			if v.locals[name] {
				pos := v.fset.Position(n.Pos())
				v.add(model.FindingReturn, pos.Line, pos.Column, name,
					fmt.Sprintf("variable %q returned from function", name), model.ConfidenceHigh)
			}
		}
	}
}

func (v *visitor) visitCall(n *ast.CallExpr) {
	if sel, ok := n.Fun.(*ast.SelectorExpr); ok {
		if recv, ok := sel.X.(*ast.Ident); ok {
			switch strings.ToLower(sel.Sel.Name) {
			case "wait", "close", "shutdown", "stop", "join", "kill", "release":
				v.joined[recv.Name] = true
			}
		}
	}

	calleeStr := exprString(n.Fun)
	isCleanup := false
	lowerCallee := strings.ToLower(calleeStr)
	for _, c := range cleanupCallees {
		if strings.Contains(lowerCallee, c) {
			isCleanup = true
			break
		}
	}
	if isCleanup {
		return
	}

	for _, arg := range n.Args {
		for _, name := range extractNames(arg) {
			if _, tracked := v.concurrencyObjects[name]; tracked && !v.joined[name] {
				pos := v.fset.Position(n.Pos())
				v.add(model.FindingParameter, pos.Line, pos.Column, name,
					fmt.Sprintf("concurrency handle %q passed without a visible join", name), model.ConfidenceMedium)
			}
		}
	}
}

// visitUnary recognizes a bare channel receive (<-ch) as joining ch,
// mirroring how the original treats .join() calls: a blocking drain is the
// Go idiom for "this goroutine's completion was observed".
func (v *visitor) visitUnary(n *ast.UnaryExpr) {
	if n.Op != token.ARROW {
		return
	}
	if ident, ok := n.X.(*ast.Ident); ok {
		v.joined[ident.Name] = true
	}
}

// visitFuncLit inspects a function literal's body for identifiers that
// resolve to the enclosing function's locals but are not its own
// parameters — Go's closure-capture analogue of the original's nonlocal
// and lambda-capture checks.
func (v *visitor) visitFuncLit(lit *ast.FuncLit) {
	params := map[string]bool{}
	if lit.Type.Params != nil {
		for _, f := range lit.Type.Params.List {
			for _, n := range f.Names {
				params[n.Name] = true
			}
		}
	}

	seen := map[string]bool{}
	ast.Inspect(lit.Body, func(node ast.Node) bool {
		if _, nested := node.(*ast.FuncLit); nested {
			return false // scanned by its own visitFuncLit call below
		}
		ident, ok := node.(*ast.Ident)
		if !ok {
			return true
		}
		if params[ident.Name] || seen[ident.Name] || !v.locals[ident.Name] {
			return true
		}
		seen[ident.Name] = true
		pos := v.fset.Position(ident.Pos())
		v.add(model.FindingClosure, pos.Line, pos.Column, ident.Name,
			fmt.Sprintf("variable %q captured by a nested closure", ident.Name), model.ConfidenceHigh)
		return true
	})

	// A closure can itself contain go-statements/returns relevant to the
	// handles it captures; keep walking for concurrency bookkeeping. A
	// nested function literal is reached here through pre's *ast.FuncLit
	// case and scanned once by its own visitFuncLit call; the closure scan
	// above stops at nested literals, so their identifiers are not
	// reported twice.
	astutil.Apply(lit.Body, v.pre, nil)
}

// checkUnjoinedConcurrency runs once the whole body has been visited: a
// concurrency handle that exists, was never joined, and was never
// reassigned away from its constructed value is reported as a leaked
// concurrency escape.
func (v *visitor) checkUnjoinedConcurrency() {
	// Visited in name order, not map order, so repeated calls emit the
	// findings in the same order.
	names := make([]string, 0, len(v.concurrencyObjects))
	for name := range v.concurrencyObjects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj := v.concurrencyObjects[name]
		if v.joined[name] || v.reassigned[name] {
			continue
		}
		v.add(model.FindingConcurrency, obj.line, obj.col, name,
			fmt.Sprintf("%s %q created but not visibly joined/closed", obj.kind, name), model.ConfidenceHigh)
	}
}

func (v *visitor) add(kind model.FindingKind, line, col int, varName, reason string, confidence model.Confidence) {
	v.findings = append(v.findings, model.EscapeFinding{
		Kind:         kind,
		Line:         line,
		Column:       col,
		VariableName: varName,
		Reason:       reason,
		Confidence:   confidence,
		CodeSnippet:  v.snippet(line),
	})
}

func (v *visitor) snippet(line int) string {
	if line <= 0 || line > len(v.lines) {
		return ""
	}
	return strings.TrimSpace(v.lines[line-1])
}

// extractNames flattens identifiers out of a name, tuple-like expression
// list element, or selector chain — the Go analogue of the original's
// _extract_names helper.
func extractNames(expr ast.Expr) []string {
	switch e := expr.(type) {
	case *ast.Ident:
		if e.Name == "_" {
			return nil
		}
		return []string{e.Name}
	case *ast.SelectorExpr:
		return extractNames(e.X)
	case *ast.IndexExpr:
		return extractNames(e.X)
	case *ast.StarExpr:
		return extractNames(e.X)
	}
	return nil
}

// exprString renders an expression as dotted text (e.g. "time.AfterFunc")
// for tail-match comparisons against the concurrency-constructor registry.
func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	case *ast.StarExpr:
		return exprString(e.X)
	case *ast.CallExpr:
		return exprString(e.Fun) + "(...)"
	}
	return ""
}
