package lockmgr

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDirWriteLockExcludesConcurrentWriters(t *testing.T) {
	m := New()

	release := m.DirWriteLock("dir-a")

	acquired := make(chan struct{})
	go func() {
		r := m.DirWriteLock("dir-a")
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second writer acquired lock while first holds it")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	<-acquired
}

func TestTryDirReadLockNonBlocking(t *testing.T) {
	m := New()
	release := m.DirWriteLock("dir-a")

	got := m.TryDirReadLock("dir-a")
	require.Nil(t, got, "read lock should not be grantable while write lock held")

	release()

	got = m.TryDirReadLock("dir-a")
	require.NotNil(t, got)
	got()
}

func TestLockDirectoriesWriteOrderedNoDeadlock(t *testing.T) {
	m := New()
	var counter int64
	var wg sync.WaitGroup

	ids := []string{"dir-c", "dir-a", "dir-b"}
	reversed := []string{"dir-b", "dir-a", "dir-c"}

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release := m.LockDirectoriesWriteOrdered(ids)
			atomic.AddInt64(&counter, 1)
			release()
		}()
		go func() {
			defer wg.Done()
			release := m.LockDirectoriesWriteOrdered(reversed)
			atomic.AddInt64(&counter, 1)
			release()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("deadlock: ordered locking did not terminate")
	}

	require.Equal(t, int64(100), atomic.LoadInt64(&counter))
}

func TestLockFilesWriteOrderedDedupsNames(t *testing.T) {
	m := New()
	release := m.LockFilesWriteOrdered("dir-a", []string{"b.txt", "a.txt", "a.txt"})
	defer release()

	got := m.TryDirReadLock("dir-a")
	require.NotNil(t, got, "file locks must not take the directory lock")
	got()
}

func TestRegistrySharesManagerUntilLastRelease(t *testing.T) {
	reg := NewRegistry()

	m1, release1 := reg.Acquire("/vault/one")
	m2, release2 := reg.Acquire("/vault/one")
	require.Same(t, m1, m2)

	release1()

	m3, release3 := reg.Acquire("/vault/one")
	require.Same(t, m2, m3, "manager should persist while a handle is still outstanding")

	release2()
	release3()

	m4, release4 := reg.Acquire("/vault/one")
	require.NotSame(t, m1, m4, "manager should be recreated after the last handle released")
	release4()
}
