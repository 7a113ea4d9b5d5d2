/*
Package concurrency provides advanced concurrency primitives with observability.

Features:
  - SmartMutex / SmartRWMutex: Deadlock detection and slow lock logging
  - Semaphore: Weighted semaphore
*/
package concurrency
