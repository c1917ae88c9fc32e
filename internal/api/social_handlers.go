package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Garbson/LitShelf/internal/color"
	"github.com/Garbson/LitShelf/internal/domain"
	"github.com/Garbson/LitShelf/internal/service"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFriends",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends",
		Summary:     "List friends",
		Description: "Returns the profiles of the user's accepted friends",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFriends)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFriend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friends/{friendId}",
		Summary:     "Remove friend",
		Description: "Removes an accepted friendship",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFriend)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFriendProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/{friendId}/profile",
		Summary:     "Friend profile",
		Description: "Returns a friend's public profile",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFriendProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFriendQuotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/{friendId}/quotes",
		Summary:     "Friend quotes",
		Description: "Returns a friend's quotes with book attribution",
		Tags:        []string{"Friends", "Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFriendQuotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests",
		Summary:     "Send friend request",
		Description: "Sends a friend request to another user",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSendFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "listIncomingRequests",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/requests/incoming",
		Summary:     "Incoming friend requests",
		Description: "Returns pending requests sent to the user",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleIncomingRequests)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSentRequests",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends/requests/sent",
		Summary:     "Sent friend requests",
		Description: "Returns pending requests the user has sent",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSentRequests)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests/{userId}/accept",
		Summary:     "Accept friend request",
		Description: "Accepts a pending request from the given user",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAcceptFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests/{userId}/reject",
		Summary:     "Reject friend request",
		Description: "Rejects a pending request from the given user",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelFriendRequest",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friends/requests/{userId}",
		Summary:     "Cancel friend request",
		Description: "Cancels a pending request the user has sent",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCancelFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/search",
		Summary:     "Search users",
		Description: "Finds discoverable users and annotates each with their relationship to the caller",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchUsers)
}

// === DTOs ===

// ProfileResponse is the public view of a user.
type ProfileResponse struct {
	ID                  string `json:"id" doc:"User ID"`
	Email               string `json:"email" doc:"Email address"`
	DisplayName         string `json:"display_name" doc:"Display name"`
	AvatarURL           string `json:"avatar_url,omitempty" doc:"Avatar URL"`
	AvatarColor         string `json:"avatar_color" doc:"Deterministic fallback avatar color"`
	AvailableForFriends bool   `json:"available_for_friends" doc:"Whether the user appears in search"`
}

// FriendshipResponse describes a friendship record.
type FriendshipResponse struct {
	UserID1     string    `json:"user_id_1" doc:"First user of the canonical pair"`
	UserID2     string    `json:"user_id_2" doc:"Second user of the canonical pair"`
	Status      string    `json:"status" doc:"pending, accepted or rejected"`
	RequestedBy string    `json:"requested_by_user_id" doc:"User who sent the request"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// FriendRequestResponse pairs a pending friendship with the other
// party's profile.
type FriendRequestResponse struct {
	Friendship FriendshipResponse `json:"friendship" doc:"Friendship record"`
	Profile    ProfileResponse    `json:"profile" doc:"Other party's profile"`
}

// ListFriendsInput carries the bearer token.
type ListFriendsInput struct {
	Authorization string `header:"Authorization"`
}

// ListFriendsResponse contains friend profiles.
type ListFriendsResponse struct {
	Friends []ProfileResponse `json:"friends" doc:"Accepted friends"`
}

// ListFriendsOutput wraps the friend list for Huma.
type ListFriendsOutput struct {
	Body ListFriendsResponse
}

// FriendInput identifies a friend by user ID.
type FriendInput struct {
	Authorization string `header:"Authorization"`
	FriendID      string `path:"friendId" doc:"Friend user ID"`
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// FriendQuoteResponse is a friend's quote with book attribution.
type FriendQuoteResponse struct {
	Quote      QuoteResponse `json:"quote" doc:"The quote"`
	BookTitle  string        `json:"book_title,omitempty" doc:"Title of the quoted book"`
	BookAuthor string        `json:"book_author,omitempty" doc:"Author of the quoted book"`
}

// FriendQuotesResponse contains a friend's quotes.
type FriendQuotesResponse struct {
	Quotes []FriendQuoteResponse `json:"quotes" doc:"Friend's quotes"`
}

// FriendQuotesOutput wraps friend quotes for Huma.
type FriendQuotesOutput struct {
	Body FriendQuotesResponse
}

// SendFriendRequestRequest is the request body for sending a request.
type SendFriendRequestRequest struct {
	UserID string `json:"user_id" validate:"required" doc:"Recipient user ID or email address"`
}

// SendFriendRequestInput wraps the send request body for Huma.
type SendFriendRequestInput struct {
	Authorization string `header:"Authorization"`
	Body          SendFriendRequestRequest
}

// FriendshipOutput wraps a friendship record for Huma.
type FriendshipOutput struct {
	Body FriendshipResponse
}

// ListRequestsInput carries the bearer token.
type ListRequestsInput struct {
	Authorization string `header:"Authorization"`
}

// ListRequestsResponse contains pending friend requests.
type ListRequestsResponse struct {
	Requests []FriendRequestResponse `json:"requests" doc:"Pending requests"`
}

// ListRequestsOutput wraps the request list for Huma.
type ListRequestsOutput struct {
	Body ListRequestsResponse
}

// RespondRequestInput identifies the other party of a pending request.
type RespondRequestInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userId" doc:"Other party's user ID"`
}

// SearchUsersInput contains user search parameters.
type SearchUsersInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Matches display name or email, case-insensitively"`
}

// UserSearchResultResponse is a discoverable user annotated with their
// relationship to the caller.
type UserSearchResultResponse struct {
	Profile    ProfileResponse `json:"profile" doc:"User profile"`
	Friendship string          `json:"friendship" doc:"none, friends, pending_incoming or pending_outgoing"`
}

// SearchUsersResponse contains user search results.
type SearchUsersResponse struct {
	Users []UserSearchResultResponse `json:"users" doc:"Matching users"`
}

// SearchUsersOutput wraps the search results for Huma.
type SearchUsersOutput struct {
	Body SearchUsersResponse
}

func mapProfile(profile domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                  profile.ID,
		Email:               profile.Email,
		DisplayName:         profile.DisplayName,
		AvatarURL:           profile.AvatarURL,
		AvatarColor:         color.ForUser(profile.ID),
		AvailableForFriends: profile.AvailableForFriends,
	}
}

func mapFriendship(f *domain.Friendship) FriendshipResponse {
	return FriendshipResponse{
		UserID1:     f.UserID1,
		UserID2:     f.UserID2,
		Status:      string(f.Status),
		RequestedBy: f.RequestedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func mapFriendRequests(requests []service.FriendRequest) ListRequestsResponse {
	resp := ListRequestsResponse{Requests: make([]FriendRequestResponse, 0, len(requests))}
	for _, req := range requests {
		resp.Requests = append(resp.Requests, FriendRequestResponse{
			Friendship: mapFriendship(req.Friendship),
			Profile:    mapProfile(req.Profile),
		})
	}
	return resp
}

// === Handlers ===

// snapshotFriends returns the watched snapshot's friends list, if the
// user has a live watch open.
func (s *Server) snapshotFriends(userID string) ([]domain.Profile, bool) {
	snap, ok := s.services.Social.Snapshot(userID)
	if !ok {
		return nil, false
	}
	return snap.Friends, true
}

func (s *Server) handleListFriends(ctx context.Context, _ *ListFriendsInput) (*ListFriendsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// A watched user is served from the live snapshot the watch keeps
	// fresh; everyone else hits the store directly.
	friends, watched := s.snapshotFriends(userID)
	if !watched {
		var err error
		friends, err = s.services.Social.ListFriends(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	resp := ListFriendsResponse{Friends: make([]ProfileResponse, 0, len(friends))}
	for _, friend := range friends {
		resp.Friends = append(resp.Friends, mapProfile(friend))
	}
	return &ListFriendsOutput{Body: resp}, nil
}

func (s *Server) handleRemoveFriend(ctx context.Context, input *FriendInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.RemoveFriend(ctx, userID, input.FriendID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Friend removed"}}, nil
}

func (s *Server) handleFriendProfile(ctx context.Context, input *FriendInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Social.FriendProfile(ctx, userID, input.FriendID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: mapProfile(*profile)}, nil
}

func (s *Server) handleFriendQuotes(ctx context.Context, input *FriendInput) (*FriendQuotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	quotes, err := s.services.Social.FriendQuotes(ctx, userID, input.FriendID)
	if err != nil {
		return nil, err
	}

	resp := FriendQuotesResponse{Quotes: make([]FriendQuoteResponse, 0, len(quotes))}
	for _, fq := range quotes {
		resp.Quotes = append(resp.Quotes, FriendQuoteResponse{
			Quote:      mapQuoteResponse(fq.Quote),
			BookTitle:  fq.BookTitle,
			BookAuthor: fq.BookAuthor,
		})
	}
	return &FriendQuotesOutput{Body: resp}, nil
}

func (s *Server) handleSendFriendRequest(ctx context.Context, input *SendFriendRequestInput) (*FriendshipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	friendship, err := s.services.Social.SendFriendRequest(ctx, userID, input.Body.UserID)
	if err != nil {
		return nil, err
	}
	return &FriendshipOutput{Body: mapFriendship(friendship)}, nil
}

func (s *Server) handleIncomingRequests(ctx context.Context, _ *ListRequestsInput) (*ListRequestsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if snap, ok := s.services.Social.Snapshot(userID); ok {
		return &ListRequestsOutput{Body: mapFriendRequests(snap.Incoming)}, nil
	}

	requests, err := s.services.Social.ListIncomingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListRequestsOutput{Body: mapFriendRequests(requests)}, nil
}

func (s *Server) handleSentRequests(ctx context.Context, _ *ListRequestsInput) (*ListRequestsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if snap, ok := s.services.Social.Snapshot(userID); ok {
		return &ListRequestsOutput{Body: mapFriendRequests(snap.Outgoing)}, nil
	}

	requests, err := s.services.Social.ListSentRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListRequestsOutput{Body: mapFriendRequests(requests)}, nil
}

func (s *Server) handleAcceptFriendRequest(ctx context.Context, input *RespondRequestInput) (*FriendshipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	friendship, err := s.services.Social.AcceptFriendRequest(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}
	return &FriendshipOutput{Body: mapFriendship(friendship)}, nil
}

func (s *Server) handleRejectFriendRequest(ctx context.Context, input *RespondRequestInput) (*FriendshipOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	friendship, err := s.services.Social.RejectFriendRequest(ctx, userID, input.UserID)
	if err != nil {
		return nil, err
	}
	return &FriendshipOutput{Body: mapFriendship(friendship)}, nil
}

func (s *Server) handleCancelFriendRequest(ctx context.Context, input *RespondRequestInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.CancelFriendRequest(ctx, userID, input.UserID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Friend request cancelled"}}, nil
}

func (s *Server) handleSearchUsers(ctx context.Context, input *SearchUsersInput) (*SearchUsersOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.services.Social.SearchUsers(ctx, userID, input.Query)
	if err != nil {
		return nil, err
	}

	resp := SearchUsersResponse{Users: make([]UserSearchResultResponse, 0, len(results))}
	for _, result := range results {
		resp.Users = append(resp.Users, UserSearchResultResponse{
			Profile:    mapProfile(result.Profile),
			Friendship: string(result.Friendship),
		})
	}
	return &SearchUsersOutput{Body: resp}, nil
}
