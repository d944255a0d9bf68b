package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

type friendsResponse struct {
	Message string   `json:"message,omitempty"`
	Friends []string `json:"friends"`
}

type addFriendRequest struct {
	FriendName string `json:"friendName"`
}

func (s *Server) listFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.svc.Friends.List(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, friendsResponse{Friends: friends})
}

func (s *Server) addFriend(w http.ResponseWriter, r *http.Request) {
	var req addFriendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	friends, err := s.svc.Friends.Add(r.Context(), currentUser(r).ID, req.FriendName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, friendsResponse{Message: "Friend added successfully", Friends: friends})
}

func (s *Server) removeFriend(w http.ResponseWriter, r *http.Request) {
	friends, err := s.svc.Friends.Remove(r.Context(), currentUser(r).ID, mux.Vars(r)["friendName"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, friendsResponse{Message: "Friend removed successfully", Friends: friends})
}

func (s *Server) clearFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.svc.Friends.Clear(r.Context(), currentUser(r).ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, friendsResponse{Message: "All friends cleared successfully", Friends: friends})
}
