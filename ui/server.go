package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
	"github.com/dhamidi/dexdis/format"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("dexdis.ui")

//go:embed templates
var embeddedFS embed.FS

const maxResults = 20

// Server is a read-only web browser over the classes of one dex file.
type Server struct {
	title     string
	classes   []*dalvik.Class
	byName    map[string]*dalvik.Class
	templates *template.Template
	mux       *http.ServeMux
}

func NewServer(title string, classes []*dalvik.Class) (*Server, error) {
	byName := make(map[string]*dalvik.Class, len(classes))
	for _, c := range classes {
		byName[c.Name()] = c
	}

	funcMap := template.FuncMap{
		"linkifyType": func(desc string) template.HTML {
			name := dex.DescriptorToSourceName(desc)
			escaped := template.HTMLEscapeString(name)
			if _, ok := byName[name]; ok {
				return template.HTML(fmt.Sprintf(`<a href="/c/%s">%s</a>`, escaped, escaped))
			}
			return template.HTML(escaped)
		},
		"flags": func(names []string) string {
			return strings.Join(names, " ")
		},
		"smali": func(c *dalvik.Class) (string, error) {
			var sb strings.Builder
			if err := format.NewSmaliEncoder(&sb).Encode(c); err != nil {
				return "", err
			}
			return sb.String(), nil
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(embeddedFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		title:     title,
		classes:   classes,
		byName:    byName,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /c/{className...}", s.handleClass)
	s.mux.HandleFunc("GET /sidebar", s.handleSidebar)
	s.mux.HandleFunc("GET /graph.dot", s.handleGraph)
	s.mux.HandleFunc("GET /", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Debugf("%s %s", r.Method, r.URL.Path)
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %v", name, err)
	}
}

type ClassViewData struct {
	Title           string
	Query           string
	Classes         []*dalvik.Class
	ActiveClass     *dalvik.Class
	ActiveClassName string
	Subclasses      []*dalvik.Class
	Implementers    []*dalvik.Class
	TotalMatches    int
	HasMore         bool
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request) {
	className := r.PathValue("className")

	query := r.URL.Query().Get("q")
	classes, total := s.match(query)
	data := ClassViewData{
		Title:        s.title,
		Query:        query,
		Classes:      classes,
		TotalMatches: total,
		HasMore:      total > maxResults,
	}

	if className != "" {
		data.ActiveClass = dalvik.FindClass(s.classes, className)
		if data.ActiveClass == nil {
			http.Error(w, "class not found", http.StatusNotFound)
			return
		}

		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			w.Header().Set("Content-Type", "application/json")
			if err := format.NewJSONEncoder(w).Encode(data.ActiveClass); err != nil {
				log.Errorf("encode %s: %v", className, err)
			}
			return
		}

		data.ActiveClassName = data.ActiveClass.Name()
		data.Subclasses, data.Implementers = s.related(data.ActiveClass)
	}

	s.render(w, "class.html", data)
}

// related returns the loaded classes extending or implementing active.
func (s *Server) related(active *dalvik.Class) (subclasses, implementers []*dalvik.Class) {
	desc := active.ClassType()
	for _, c := range s.classes {
		if c.SuperType() == desc {
			subclasses = append(subclasses, c)
		}
		for _, iface := range c.Interfaces() {
			if iface == desc {
				implementers = append(implementers, c)
				break
			}
		}
	}
	return subclasses, implementers
}

// match returns up to maxResults classes whose name contains query, sorted
// by name, and the total number of matches.
func (s *Server) match(query string) ([]*dalvik.Class, int) {
	query = strings.ToLower(query)
	var matches []*dalvik.Class
	for _, c := range s.classes {
		if query == "" || strings.Contains(strings.ToLower(c.Name()), query) {
			matches = append(matches, c)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Name() < matches[j].Name()
	})

	total := len(matches)
	if total > maxResults {
		matches = matches[:maxResults]
	}
	return matches, total
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if len(s.classes) > 0 {
		http.Redirect(w, r, "/c/", http.StatusSeeOther)
		return
	}
	s.render(w, "index.html", struct{ Title string }{s.title})
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	classes, total := s.match(r.URL.Query().Get("q"))

	data := struct {
		Classes         []*dalvik.Class
		ActiveClassName string
		TotalMatches    int
		HasMore         bool
	}{
		Classes:         classes,
		ActiveClassName: r.URL.Query().Get("active"),
		TotalMatches:    total,
		HasMore:         total > maxResults,
	}
	s.render(w, "_sidebar.html", data)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	withObject := r.URL.Query().Get("object") == "1"
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	fmt.Fprint(w, format.DOT(s.classes, s.title, withObject))
}
