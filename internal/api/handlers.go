package api

import (
	"net/http"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
}

// ---------------------------------------------------------------------------
// Todos
// ---------------------------------------------------------------------------

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	content, err := decodeCreateTodo(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, ok := s.requestSession(w, r)
	if !ok {
		return
	}

	created, err := s.svc.CreateTodo(r.Context(), sess, content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, created)
}

func (s *Server) handleGetTodos(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requestSession(w, r)
	if !ok {
		return
	}

	todos, err := s.svc.ListTodos(r.Context(), sess)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, todos)
}

// handleGetTodo answers 200 with a null body when the todo does not exist.
func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, ok := s.requestSession(w, r)
	if !ok {
		return
	}

	todo, err := s.svc.GetTodo(r.Context(), sess, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, todo)
}

// handleDeleteTodo reports success whether or not the todo existed.
func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, ok := s.requestSession(w, r)
	if !ok {
		return
	}

	if _, err := s.svc.DeleteTodo(r.Context(), sess, id); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]int64{"Succesfully deleted todo": id})
}
