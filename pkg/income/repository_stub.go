package income

import "context"

type RepositoryStub struct {
	nextId  int
	entries map[int]IncomeEntry
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{entries: map[int]IncomeEntry{}}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.entries = map[int]IncomeEntry{}
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, entry IncomeEntry) (int, error) {
	s.nextId++
	entry.Id = s.nextId
	s.entries[entry.Id] = entry
	return entry.Id, nil
}

func (s *RepositoryStub) GetAll(ctx context.Context, userId int) ([]IncomeEntry, error) {
	entries := make([]IncomeEntry, 0, len(s.entries))
	for id := 1; id <= s.nextId; id++ {
		if e, ok := s.entries[id]; ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, entryId int) (bool, error) {
	if _, ok := s.entries[entryId]; !ok {
		return false, nil
	}
	delete(s.entries, entryId)
	return true, nil
}
