package loyalty

import (
	"strconv"
	"sync"
)

// KeyedMutex 以字串鍵區分的互斥鎖
//
// 同一用戶的餘額讀改寫必須串行；不同用戶互不阻塞。
// 鍵在沒有持有者時從 map 移除，map 不會隨用戶數量無限增長。
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu      sync.Mutex
	holders int
}

// NewKeyedMutex 建構函數
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyedEntry),
	}
}

// Lock 取得 key 的鎖，返回解鎖函數
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.holders++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.holders--
		if entry.holders == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Size 目前仍被持有或等待中的鍵數量
func (k *KeyedMutex) Size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func userLockKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
