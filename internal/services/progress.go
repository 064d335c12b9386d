package services

import "sync"

// UploadProgress 跟踪一次上传尝试内的分数进度，取值 [0,1]。
// 进度在单次尝试内单调不减；只有对象上传确认完成后才会到达 1.0。
// 并发安全：对象存储回调与调用方读取可能在不同 goroutine。
type UploadProgress struct {
	mu     sync.Mutex
	loaded int64
	total  int64
	done   bool
}

// NewUploadProgress 以预期总字节数构造进度跟踪器。
func NewUploadProgress(total int64) *UploadProgress {
	return &UploadProgress{total: total}
}

// Observe 记录字节进度回调。回退的 loaded 值被忽略以保持单调性；
// 在 Complete 之前即便 loaded==total 也不汇报 1.0。
func (p *UploadProgress) Observe(loaded, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if total > 0 && p.total != total {
		p.total = total
	}
	if loaded > p.loaded {
		p.loaded = loaded
	}
}

// Complete 在对象上传确认成功后调用，进度到达 1.0。
func (p *UploadProgress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	if p.total > 0 {
		p.loaded = p.total
	}
}

// Snapshot 返回 (loaded, total)，供进度回调转发。
// 上传确认完成前 loaded 被压到 total 以下，保证 1.0 只在终态出现。
func (p *UploadProgress) Snapshot() (int64, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	loaded := p.loaded
	if !p.done && p.total > 0 && loaded >= p.total {
		loaded = p.total - 1
	}
	return loaded, p.total
}

// Fraction 返回当前进度分数。上传确认完成前上限为 0.99，
// 避免分母略小或最后一块已计数但尚未 Close 时提前报告完成。
func (p *UploadProgress) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return 1.0
	}
	if p.total <= 0 || p.loaded <= 0 {
		return 0
	}
	f := float64(p.loaded) / float64(p.total)
	if f > 0.99 {
		f = 0.99
	}
	return f
}
