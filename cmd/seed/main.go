// Command seed populates a running server with demo users, chats and
// messages through the public HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	baseURL  = flag.String("url", "http://localhost:8080", "server base URL")
	numUsers = flag.Int("users", 5, "number of users to create")
)

const defaultPassword = "password123"

type account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	users := make([]account, 0, *numUsers)
	for i := 0; i < *numUsers; i++ {
		u := registerUser()
		log.Printf("registered %s <%s>", u.Name, u.Email)
		users = append(users, u)
	}
	if len(users) < 3 {
		log.Fatal("need at least 3 users to seed chats")
	}

	first := users[0]

	// Direct chats between the first user and everyone else.
	for _, other := range users[1:] {
		chatID := accessChat(first.Token, other.ID)
		for i := 0; i < 3; i++ {
			sendMessage(first.Token, chatID, gofakeit.HipsterSentence(8))
			sendMessage(other.Token, chatID, gofakeit.HipsterSentence(8))
		}
		log.Printf("seeded direct chat %s with %s", chatID, other.Name)
	}

	// One group chat with everyone.
	memberIDs := make([]string, 0, len(users)-1)
	for _, u := range users[1:] {
		memberIDs = append(memberIDs, u.ID)
	}
	groupID := createGroup(first.Token, gofakeit.Company(), memberIDs)
	for _, u := range users {
		sendMessage(u.Token, groupID, gofakeit.Quote())
	}
	log.Printf("seeded group chat %s with %d members", groupID, len(users))
}

func registerUser() account {
	payload := map[string]string{
		"name":     gofakeit.Name(),
		"email":    gofakeit.Email(),
		"password": defaultPassword,
	}
	var acc account
	post("/api/user", "", payload, &acc)
	return acc
}

func accessChat(token, userID string) string {
	var chat struct {
		ID string `json:"id"`
	}
	post("/api/chat", token, map[string]string{"userId": userID}, &chat)
	return chat.ID
}

func createGroup(token, name string, userIDs []string) string {
	encoded, err := json.Marshal(userIDs)
	if err != nil {
		log.Fatalf("encode users: %v", err)
	}
	var chat struct {
		ID string `json:"id"`
	}
	post("/api/chat/group", token, map[string]string{"name": name, "users": string(encoded)}, &chat)
	return chat.ID
}

func sendMessage(token, chatID, content string) {
	post("/api/message", token, map[string]string{"chatId": chatID, "content": content}, nil)
}

func post(path, token string, payload, out interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("encode payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Fatalf("POST %s: unexpected status %s", path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s response: %v", path, err)
		}
	}
}
