package service

import "sync/atomic"

// Stats 服务运行统计 (进程内，不落库)
type Stats struct {
	generations atomic.Int64
	posts       atomic.Int64
	exports     atomic.Int64
	failures    atomic.Int64
}

// StatsSnapshot 统计快照
type StatsSnapshot struct {
	Generations int64 `json:"generations"`
	Posts       int64 `json:"posts"`
	Exports     int64 `json:"exports"`
	Failures    int64 `json:"failures"`
}

func NewStats() *Stats {
	return &Stats{}
}

// RecordGeneration 记录一次成功生成
func (s *Stats) RecordGeneration(posts int) {
	s.generations.Add(1)
	s.posts.Add(int64(posts))
}

func (s *Stats) RecordExport() {
	s.exports.Add(1)
}

func (s *Stats) RecordFailure() {
	s.failures.Add(1)
}

// Snapshot 读取当前计数
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Generations: s.generations.Load(),
		Posts:       s.posts.Load(),
		Exports:     s.exports.Load(),
		Failures:    s.failures.Load(),
	}
}
