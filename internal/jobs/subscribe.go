package jobs

// Subscribe returns a channel of job snapshots. The channel always holds the
// most recent snapshot and is closed after the terminal one. Call cancel to
// stop receiving before the job finishes.
func (m *Manager) Subscribe(id string) (<-chan Job, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, nil, ErrJobNotFound
	}

	ch := make(chan Job, 1)
	ch <- job.clone()
	if job.IsTerminal() {
		close(ch)
		return ch, func() {}, nil
	}
	m.subscribers[id] = append(m.subscribers[id], ch)

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subscribers[id]
		for i, c := range subs {
			if c == ch {
				m.subscribers[id] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
		if len(m.subscribers[id]) == 0 {
			delete(m.subscribers, id)
		}
	}
	return ch, cancel, nil
}

// publish sends the current state to every subscriber. Callers hold m.mu.
func (m *Manager) publish(job *Job) {
	subs := m.subscribers[job.ID]
	if len(subs) == 0 {
		return
	}
	snap := job.clone()
	for _, ch := range subs {
		offer(ch, snap)
	}
	if job.IsTerminal() {
		for _, ch := range subs {
			close(ch)
		}
		delete(m.subscribers, job.ID)
	}
}

// offer replaces any unread snapshot with s.
func offer(ch chan Job, s Job) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
