package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 4, ExpiryDuration: time.Second})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	if p.Name() != "test" {
		t.Errorf("池名称不匹配: 期望 test, 实际 %s", p.Name())
	}
	if p.Cap() != 4 {
		t.Errorf("池容量不匹配: 期望 4, 实际 %d", p.Cap())
	}
}

func TestNewPoolDefaultCapacity(t *testing.T) {
	p, err := NewPool("default", &Config{Capacity: 0})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	if p.Cap() <= 0 {
		t.Errorf("默认容量应为正数, 实际 %d", p.Cap())
	}
}

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 10, ExpiryDuration: 5 * time.Second})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	var counter atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		}); err != nil {
			t.Errorf("提交任务失败: %v", err)
			wg.Done()
		}
	}
	wg.Wait()

	if counter.Load() != 100 {
		t.Errorf("任务执行数不匹配: 期望 100, 实际 %d", counter.Load())
	}
	if s := p.Stats(); s.SubmittedTasks != 100 {
		t.Errorf("提交统计不匹配: 期望 100, 实际 %d", s.SubmittedTasks)
	}
}

func TestPoolForEach(t *testing.T) {
	p, err := NewPool("index", &Config{Capacity: 3})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	out := make([]int, 50)
	p.ForEach(len(out), func(i int) {
		out[i] = i * i
	})
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, 期望 %d", i, v, i*i)
		}
	}
}

func TestPoolForEachAfterRelease(t *testing.T) {
	p, err := NewPool("closed", &Config{Capacity: 2})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	p.Release()
	p.Release()

	if err := p.Submit(func() {}); err != ErrPoolClosed {
		t.Errorf("期望 ErrPoolClosed, 实际 %v", err)
	}

	var n atomic.Int32
	p.ForEach(5, func(int) { n.Add(1) })
	if n.Load() != 5 {
		t.Errorf("关闭后应在调用方执行, 实际执行 %d", n.Load())
	}
}

func TestPoolPanicRecovered(t *testing.T) {
	var handled atomic.Bool
	p, err := NewPool("panic", &Config{
		Capacity:     1,
		PanicHandler: func(any) { handled.Store(true) },
	})
	if err != nil {
		t.Fatalf("创建池失败: %v", err)
	}
	defer p.Release()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = p.Submit(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for !handled.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !handled.Load() {
		t.Error("期望 panic 被处理")
	}
	if p.Stats().PanicRecovered != 1 {
		t.Errorf("panic 统计不匹配: %d", p.Stats().PanicRecovered)
	}
}
