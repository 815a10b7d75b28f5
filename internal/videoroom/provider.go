// Package videoroom описывает внешнего провайдера видеосвязи.
// Медиа-транспорт живёт у провайдера, здесь только адрес комнаты.
package videoroom

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrEmptyRoom = errors.New("room name is required")

// Participant то, что провайдер принимает на вход
type Participant struct {
	RoomName string
	Role     string
	Identity string
}

// Room куда направить клиента
type Room struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Identity string `json:"identity"`
	JoinURL  string `json:"join_url"`
}

type Provider interface {
	Join(ctx context.Context, p Participant) (*Room, error)
}

// URLProvider строит ссылку на комнату вида {base}/{room}#userInfo.displayName="{identity}"
type URLProvider struct {
	base *url.URL
}

func NewURLProvider(baseURL string) (*URLProvider, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse video base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("video base url must be absolute: %q", baseURL)
	}
	return &URLProvider{base: u}, nil
}

func (p *URLProvider) Join(_ context.Context, in Participant) (*Room, error) {
	name := strings.TrimSpace(in.RoomName)
	if name == "" {
		return nil, ErrEmptyRoom
	}

	u := *p.base
	u.Path = u.Path + "/" + name
	u.Fragment = fmt.Sprintf(`userInfo.displayName="%s"`, in.Identity)

	return &Room{
		Name:     name,
		Role:     in.Role,
		Identity: in.Identity,
		JoinURL:  u.String(),
	}, nil
}
