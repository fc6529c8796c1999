package user

import "context"

type StubUserRepo struct {
	nextId int
	users  map[int]User
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{users: map[int]User{}}
}

func (s *StubUserRepo) CreateUser(ctx context.Context, user User) (int, error) {
	s.nextId++
	user.Id = s.nextId
	s.users[user.Id] = user
	return user.Id, nil
}

func (s *StubUserRepo) GetUser(ctx context.Context, id int) (User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepo) GetUserByUid(ctx context.Context, uid string) (User, error) {
	for _, u := range s.users {
		if u.Uid == uid {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepo) Cleanup() {
	s.nextId = 0
	s.users = map[int]User{}
}
