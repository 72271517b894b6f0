/*
Package domain contains the core models of the page-builder placement engine.

It defines the component tree being edited, the descriptors a host editor captures
during a drag gesture, and the placement instructions the resolver produces. This
package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Component: A node of the page tree (id, type, ordered children, optional slot key).
  - Drag / DropTarget / TabHover: What the host knows when a drag gesture ends.
  - Instruction: The resolver output, one of Add, Move or None.
  - Action: A mutation the reducer applies to a tree (instructions, remove, update...).
  - History / Document: The undoable editing state of a page and its persisted form.
*/
package domain
